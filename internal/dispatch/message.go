// Package dispatch decodes request bodies, routes them through a
// store.Store (mutating ops inside a transaction), and encodes the
// response body; framing the response and writing it onto a connection
// is done by the root package's Server (spec §4.10).
package dispatch

import (
	"github.com/ehrlich-b/raleighsl/internal/codec"
)

// Field IDs used inside a request/response body's TLV encoding.
const (
	fieldName     = 0 // object name, string
	fieldOpKind   = 1 // op kind, string
	fieldValue    = 2 // op arg "value", uint64
	fieldDelta    = 3 // op arg "delta", uint64
	fieldExpected = 4 // op arg "expected", uint64
	fieldBit      = 5 // op arg "bit", uint64
	fieldKind     = 6 // object kind for create, string
	fieldResult   = 7 // response: result uint64
	fieldErrCode  = 8 // response: error code string, absent on success
	fieldCAS      = 9 // response: counter cas token, uint64
)

// Request is a decoded client request body.
type Request struct {
	Name     string
	OpKind   string
	Kind     string
	Value    uint64
	Delta    uint64
	Expected uint64
	Bit      uint64
	hasValue, hasDelta, hasExpected, hasBit bool
}

func putStringField(id uint16, s string) []byte {
	return append(codec.EncodeField(id, uint64(len(s))), []byte(s)...)
}

func putUintField(id uint16, v uint64) []byte {
	n := codec.UintSize(v)
	out := codec.EncodeField(id, uint64(n))
	val := make([]byte, n)
	codec.PutUintN(val, v, n)
	return append(out, val...)
}

// EncodeRequest serializes req into a TLV body.
func EncodeRequest(req Request) []byte {
	var out []byte
	out = append(out, putStringField(fieldName, req.Name)...)
	out = append(out, putStringField(fieldOpKind, req.OpKind)...)
	if req.Kind != "" {
		out = append(out, putStringField(fieldKind, req.Kind)...)
	}
	if req.hasValue {
		out = append(out, putUintField(fieldValue, req.Value)...)
	}
	if req.hasDelta {
		out = append(out, putUintField(fieldDelta, req.Delta)...)
	}
	if req.hasExpected {
		out = append(out, putUintField(fieldExpected, req.Expected)...)
	}
	if req.hasBit {
		out = append(out, putUintField(fieldBit, req.Bit)...)
	}
	return out
}

// WithValue returns a copy of req carrying a "value" argument.
func (req Request) WithValue(v uint64) Request { req.Value, req.hasValue = v, true; return req }

// WithDelta returns a copy of req carrying a "delta" argument.
func (req Request) WithDelta(v uint64) Request { req.Delta, req.hasDelta = v, true; return req }

// WithExpected returns a copy of req carrying an "expected" argument.
func (req Request) WithExpected(v uint64) Request {
	req.Expected, req.hasExpected = v, true
	return req
}

// WithBit returns a copy of req carrying a "bit" argument.
func (req Request) WithBit(v uint64) Request { req.Bit, req.hasBit = v, true; return req }

// DecodeRequest parses a TLV body produced by EncodeRequest.
func DecodeRequest(b []byte) (Request, error) {
	var req Request
	for len(b) > 0 {
		id, length, consumed, err := codec.DecodeField(b)
		if err != nil {
			return Request{}, err
		}
		b = b[consumed:]
		if uint64(len(b)) < length {
			return Request{}, codec.ErrNeedMore(length - uint64(len(b)))
		}
		val := b[:length]
		b = b[length:]

		switch id {
		case fieldName:
			req.Name = string(val)
		case fieldOpKind:
			req.OpKind = string(val)
		case fieldKind:
			req.Kind = string(val)
		case fieldValue:
			req.Value = codec.GetUintN(val, len(val))
			req.hasValue = true
		case fieldDelta:
			req.Delta = codec.GetUintN(val, len(val))
			req.hasDelta = true
		case fieldExpected:
			req.Expected = codec.GetUintN(val, len(val))
			req.hasExpected = true
		case fieldBit:
			req.Bit = codec.GetUintN(val, len(val))
			req.hasBit = true
		}
	}
	return req, nil
}

// Response is the result of handling one Request. CAS carries the
// Counter object's compare-and-swap token alongside Result's value, so
// a client can issue its next cas without a separate get (spec §4.8
// Counter table: every op's response is (value, cas)). HasCAS reports
// whether CAS is meaningful for this response's object kind.
type Response struct {
	Result  uint64
	CAS     uint64
	HasCAS  bool
	ErrCode string
}

// EncodeResponse serializes resp into a TLV body.
func EncodeResponse(resp Response) []byte {
	var out []byte
	out = append(out, putUintField(fieldResult, resp.Result)...)
	if resp.HasCAS {
		out = append(out, putUintField(fieldCAS, resp.CAS)...)
	}
	if resp.ErrCode != "" {
		out = append(out, putStringField(fieldErrCode, resp.ErrCode)...)
	}
	return out
}

// DecodeResponse parses a TLV body produced by EncodeResponse.
func DecodeResponse(b []byte) (Response, error) {
	var resp Response
	for len(b) > 0 {
		id, length, consumed, err := codec.DecodeField(b)
		if err != nil {
			return Response{}, err
		}
		b = b[consumed:]
		if uint64(len(b)) < length {
			return Response{}, codec.ErrNeedMore(length - uint64(len(b)))
		}
		val := b[:length]
		b = b[length:]

		switch id {
		case fieldResult:
			resp.Result = codec.GetUintN(val, len(val))
		case fieldCAS:
			resp.CAS = codec.GetUintN(val, len(val))
			resp.HasCAS = true
		case fieldErrCode:
			resp.ErrCode = string(val)
		}
	}
	return resp, nil
}
