package raleighsl

import (
	"errors"
	"testing"
)

func TestStructuredError(t *testing.T) {
	err := NewError("counter.set", CodeInvalidArgument, "invalid value")

	if err.Op != "counter.set" {
		t.Errorf("Expected Op=counter.set, got %s", err.Op)
	}
	if err.Code != CodeInvalidArgument {
		t.Errorf("Expected Code=CodeInvalidArgument, got %s", err.Code)
	}

	expected := "raleighsl: invalid value (op=counter.set)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestErrorWithOID(t *testing.T) {
	err := &Error{Op: "store.lookup", Code: CodeNotFound, OID: 42, Msg: "no such object"}

	expected := "raleighsl: no such object (op=store.lookup oid=42)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestWrapError(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapError("device.write", CodeIO, inner)

	if err.Code != CodeIO {
		t.Errorf("Expected Code=CodeIO, got %s", err.Code)
	}
	if !errors.Is(err, inner) {
		t.Error("Expected wrapped error to satisfy errors.Is for inner")
	}
}

func TestErrorIsCode(t *testing.T) {
	err := NewError("store.create", CodeAlreadyExists, "name bound")

	if !errors.Is(err, CodeAlreadyExists) {
		t.Error("Expected errors.Is to match the bare Code")
	}
	if errors.Is(err, CodeNotFound) {
		t.Error("Expected errors.Is to not match a different Code")
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("counter.cas", CodeConcurrencyConflict, "cas mismatch")

	if !IsCode(err, CodeConcurrencyConflict) {
		t.Error("IsCode should return true for matching code")
	}
	if IsCode(err, CodeIO) {
		t.Error("IsCode should return false for non-matching code")
	}
	if IsCode(nil, CodeIO) {
		t.Error("IsCode should return false for nil error")
	}
}
