package raleighsl

import (
	"errors"
	"fmt"
)

// Code is a high-level error category, the one thing a dispatcher
// response is allowed to leak to a client (spec §7). Modeled as a
// string enum rather than a bare int so log lines stay self-describing
// without a lookup table, the same choice the teacher makes for its
// own error code type.
type Code string

const (
	CodeNoMemory            Code = "no memory"
	CodeNotFound            Code = "not found"
	CodeAlreadyExists       Code = "already exists"
	CodeNotSupported        Code = "not supported"
	CodeInvalidArgument     Code = "invalid argument"
	CodeConcurrencyConflict Code = "concurrency conflict"
	CodeTruncated           Code = "truncated"
	CodeCorrupt             Code = "corrupt"
	CodeIO                  Code = "io error"
)

func (c Code) Error() string { return string(c) }

// Error is the structured error every plugin operation and dispatcher
// path returns, mirroring the teacher's own Error{Op, Code, Errno, Msg,
// Inner}: one shape that carries a stable category for the wire's
// error field alongside whatever free-form context helped diagnose it.
type Error struct {
	Op    string // e.g. "counter.incr", "semantic.lookup"
	Code  Code
	OID   uint64 // object id, 0 if not applicable
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.OID != 0 {
		return fmt.Sprintf("raleighsl: %s (op=%s oid=%d)", msg, e.Op, e.OID)
	}
	return fmt.Sprintf("raleighsl: %s (op=%s)", msg, e.Op)
}

func (e *Error) Unwrap() error { return e.Inner }

// Is lets errors.Is match either a bare Code or another *Error carrying
// the same Code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if code, ok := target.(Code); ok {
		return e.Code == code
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// NewError builds an *Error for op with the given code and message.
func NewError(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// WrapError builds an *Error for op wrapping inner, classified as code.
func WrapError(op string, code Code, inner error) *Error {
	return &Error{Op: op, Code: code, Inner: inner, Msg: inner.Error()}
}

// IsCode reports whether err is, or wraps, a *Error carrying code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
