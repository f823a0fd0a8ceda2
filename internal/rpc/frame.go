// Package rpc implements the wire protocol and connection plumbing that
// sits between the reactor's socket entities and the dispatcher: frame
// (de)serialization, the inbound parse state machine, the outbound
// gather-write queue, and connection lifecycle tracking.
package rpc

import (
	"fmt"

	"github.com/ehrlich-b/raleighsl/internal/codec"
)

// Every frame on the wire:
//
//	+-------+----------------+----------------+------+
//	| byte0 | frame-length   | forward-length | head |
//	+-------+----------------+----------------+------+
//	| fwd-data | frame-payload                       |
//	+--------------------------------------------------+
//
// byte0 packs three fields: PkgType in the high nibble, forward-length
// width (0-3 bytes) in bits 3-2, frame-length width (1-4 bytes, stored
// as width-1) in bits 1-0.
const (
	frameLenWidthMask = 0x3
	fwdLenWidthShift  = 2
	fwdLenWidthMask   = 0x3
	pkgTypeShift      = 4
)

// FrameHeader is the decoded byte0 + frame-length + forward-length
// prefix of one wire frame.
type FrameHeader struct {
	PkgType  byte
	FrameLen uint64 // total bytes following the header
	FwdLen   uint64 // bytes of fwd-data preceding frame-payload
}

func widthOf(n uint64) int {
	w := codec.UintSize(n)
	if w > 4 {
		w = 4
	}
	return w
}

// EncodeFrameHeader serializes hdr. frameLen must fit in 4 bytes and
// fwdLen in 3, per spec.
func EncodeFrameHeader(hdr FrameHeader) ([]byte, error) {
	if hdr.FrameLen >= 1<<32 {
		return nil, fmt.Errorf("rpc: frame length %d exceeds 4-byte field", hdr.FrameLen)
	}
	if hdr.FwdLen >= 1<<24 {
		return nil, fmt.Errorf("rpc: forward length %d exceeds 3-byte field", hdr.FwdLen)
	}

	frameLenBytes := widthOf(hdr.FrameLen)
	fwdLenBytes := 0
	if hdr.FwdLen > 0 {
		fwdLenBytes = widthOf(hdr.FwdLen)
		if fwdLenBytes > 3 {
			fwdLenBytes = 3
		}
	}

	out := make([]byte, 1+frameLenBytes+fwdLenBytes)
	out[0] = (hdr.PkgType << pkgTypeShift) | byte((fwdLenBytes&fwdLenWidthMask)<<fwdLenWidthShift) | byte((frameLenBytes-1)&frameLenWidthMask)
	codec.PutUintN(out[1:1+frameLenBytes], hdr.FrameLen, frameLenBytes)
	if fwdLenBytes > 0 {
		codec.PutUintN(out[1+frameLenBytes:], hdr.FwdLen, fwdLenBytes)
	}
	return out, nil
}

// DecodeFrameHeader parses byte0 plus the frame/forward length fields
// from b. On success it returns the header and how many bytes it
// consumed. If b is too short to contain the full header,
// codec.ErrNeedMore reports exactly how many more bytes are required.
func DecodeFrameHeader(b []byte) (FrameHeader, int, error) {
	if len(b) < 1 {
		return FrameHeader{}, 0, codec.ErrNeedMore(1 - len(b))
	}
	byte0 := b[0]
	frameLenBytes := int(byte0&frameLenWidthMask) + 1
	fwdLenBytes := int((byte0 >> fwdLenWidthShift) & fwdLenWidthMask)
	need := 1 + frameLenBytes + fwdLenBytes
	if len(b) < need {
		return FrameHeader{}, 0, codec.ErrNeedMore(need - len(b))
	}

	hdr := FrameHeader{PkgType: byte0 >> pkgTypeShift}
	off := 1
	hdr.FrameLen = codec.GetUintN(b[off:off+frameLenBytes], frameLenBytes)
	off += frameLenBytes
	if fwdLenBytes > 0 {
		hdr.FwdLen = codec.GetUintN(b[off:off+fwdLenBytes], fwdLenBytes)
	}
	return hdr, need, nil
}

// MessageHead is the {msg_type, req_id, req_type} triple that opens
// every frame's payload.
type MessageHead struct {
	MsgType uint64
	ReqID   uint64
	ReqType byte // a small enum (request/response/event/...), fits in 4 bits
}

// headByte packs (msg_type width-1) in bits 7-6, (req_id width-1) in
// bits 5-4, and req_type directly in the low nibble — the same
// "pack the width, not the value" idea as the field codec's header
// byte, sized for the message head's three components instead of two.
func headByte(msgTypeBytes, reqIDBytes int, reqType byte) byte {
	return byte((msgTypeBytes-1)<<6) | byte((reqIDBytes-1)<<4) | (reqType & 0x0f)
}

// EncodeMessageHead serializes h.
func EncodeMessageHead(h MessageHead) ([]byte, error) {
	if h.ReqType > 0x0f {
		return nil, fmt.Errorf("rpc: req_type %d exceeds 4 bits", h.ReqType)
	}
	msgTypeBytes := widthOf(h.MsgType)
	reqIDBytes := widthOf(h.ReqID)

	out := make([]byte, 1+msgTypeBytes+reqIDBytes)
	out[0] = headByte(msgTypeBytes, reqIDBytes, h.ReqType)
	codec.PutUintN(out[1:1+msgTypeBytes], h.MsgType, msgTypeBytes)
	codec.PutUintN(out[1+msgTypeBytes:], h.ReqID, reqIDBytes)
	return out, nil
}

// DecodeMessageHead parses a message head from b, reporting
// codec.ErrNeedMore if b is too short.
func DecodeMessageHead(b []byte) (MessageHead, int, error) {
	if len(b) < 1 {
		return MessageHead{}, 0, codec.ErrNeedMore(1 - len(b))
	}
	byte0 := b[0]
	msgTypeBytes := int(byte0>>6) + 1
	reqIDBytes := int((byte0>>4)&0x3) + 1
	reqType := byte0 & 0x0f

	need := 1 + msgTypeBytes + reqIDBytes
	if len(b) < need {
		return MessageHead{}, 0, codec.ErrNeedMore(need - len(b))
	}

	h := MessageHead{ReqType: reqType}
	off := 1
	h.MsgType = codec.GetUintN(b[off:off+msgTypeBytes], msgTypeBytes)
	off += msgTypeBytes
	h.ReqID = codec.GetUintN(b[off:off+reqIDBytes], reqIDBytes)
	return h, need, nil
}
