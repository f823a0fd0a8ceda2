package rpc

import (
	"fmt"

	"github.com/ehrlich-b/raleighsl/internal/codec"
	"github.com/ehrlich-b/raleighsl/internal/constants"
)

// ParseResult is what a user-supplied Parse callback returns for one
// slice of payload bytes.
type ParseResult int

const (
	ParseOK ParseResult = iota
	ParseNeedMore
	ParseFatal
)

// ErrFatal wraps whatever error a Parse callback reported when it
// returned ParseFatal, so InboundReader.Feed can surface why the
// connection is being closed.
type ErrFatal struct{ Inner error }

func (e *ErrFatal) Error() string { return fmt.Sprintf("rpc: fatal parse error: %v", e.Inner) }
func (e *ErrFatal) Unwrap() error { return e.Inner }

// Handlers is the set of user-provided callbacks InboundReader drives.
// Alloc is called once a frame header is fully parsed, to create a
// message context. Parse is called with successive slices of payload
// until the frame completes. Exec runs once the frame is complete, with
// a reference held against the connection so it can't be torn down
// mid-execution.
type Handlers struct {
	Alloc func(head MessageHead) (ctx any, err error)
	Parse func(ctx any, slice []byte) (ParseResult, error)
	Exec  func(ctx any)
}

type readerState int

const (
	stateHeader readerState = iota
	statePayload
)

// InboundReader implements spec's inbound reader contract: a fixed
// scratch buffer concatenated with bytes carried forward from the
// previous read, a frame-header parse, then a streamed payload parse
// that may ask for more data without losing progress. Grounded on
// queue.Runner's fixed per-tag buffer discipline — this reader never
// grows its scratch buffer, it only ever carries forward the unconsumed
// remainder.
type InboundReader struct {
	h Handlers

	scratch  [constants.InboundScratchSize]byte
	leftover []byte

	state   readerState
	hdr     FrameHeader
	head    MessageHead
	ctx     any
	remain  uint64 // payload bytes still to feed to Parse for the current frame
	inFrame bool
}

// NewInboundReader creates a reader bound to h.
func NewInboundReader(h Handlers) *InboundReader {
	return &InboundReader{h: h, state: stateHeader}
}

// Feed hands raw bytes read off the socket to the reader. It may invoke
// Alloc/Parse/Exec any number of times, including zero (if chunk holds
// less than one full frame header) or several (if chunk holds more than
// one frame). It returns an error only for a fatal condition; running
// out of bytes mid-frame is not an error, the remainder is carried
// forward internally.
func (r *InboundReader) Feed(chunk []byte) error {
	buf := append(r.leftover, chunk...)
	r.leftover = nil

	for len(buf) > 0 || (r.state == statePayload && r.remain == 0) {
		switch r.state {
		case stateHeader:
			hdr, hn, err := DecodeFrameHeader(buf)
			if err != nil {
				if _, needMore := err.(codec.ErrNeedMore); needMore {
					r.saveLeftover(buf)
					return nil
				}
				return err
			}
			headBuf := buf[hn:]
			if hdr.FwdLen > 0 && uint64(len(headBuf)) < hdr.FwdLen {
				r.saveLeftover(buf)
				return nil
			}
			fwdData := headBuf[:hdr.FwdLen]
			afterFwd := headBuf[hdr.FwdLen:]

			head, mn, err := DecodeMessageHead(afterFwd)
			if err != nil {
				if _, needMore := err.(codec.ErrNeedMore); needMore {
					r.saveLeftover(buf)
					return nil
				}
				return err
			}
			_ = fwdData // forward-data is handed to Alloc via closures over client state, not modeled here

			ctx, err := r.h.Alloc(head)
			if err != nil {
				return &ErrFatal{Inner: err}
			}

			r.hdr = hdr
			r.head = head
			r.ctx = ctx
			consumed := hdr.FwdLen + uint64(mn)
			if hdr.FrameLen < consumed {
				return &ErrFatal{Inner: fmt.Errorf("rpc: frame length %d shorter than its own head (%d bytes)", hdr.FrameLen, consumed)}
			}
			r.remain = hdr.FrameLen - consumed
			r.state = statePayload
			r.inFrame = true
			buf = afterFwd[mn:]

		case statePayload:
			take := uint64(len(buf))
			if take > r.remain {
				take = r.remain
			}
			slice := buf[:take]
			buf = buf[take:]
			r.remain -= take

			if len(slice) > 0 || r.remain == 0 {
				res, err := r.h.Parse(r.ctx, slice)
				if err != nil || res == ParseFatal {
					return &ErrFatal{Inner: err}
				}
				if res == ParseNeedMore && r.remain == 0 {
					return &ErrFatal{Inner: fmt.Errorf("rpc: parser still needs more after frame exhausted")}
				}
			}

			if r.remain == 0 {
				r.h.Exec(r.ctx)
				r.ctx = nil
				r.inFrame = false
				r.state = stateHeader
			}
		}
	}
	return nil
}

func (r *InboundReader) saveLeftover(buf []byte) {
	if len(buf) > len(r.scratch) {
		// A single frame header never exceeds constants.MaxFrameHeaderBytes,
		// so this only happens if the caller feeds chunks far larger than
		// the scratch buffer; carry it forward anyway rather than losing
		// bytes, since InboundReader doesn't own chunk sizing.
		r.leftover = append([]byte(nil), buf...)
		return
	}
	n := copy(r.scratch[:], buf)
	r.leftover = r.scratch[:n]
}

// InFrame reports whether a frame is currently being streamed in (i.e.
// Close must not be called yet without aborting work in flight).
func (r *InboundReader) InFrame() bool { return r.inFrame }
