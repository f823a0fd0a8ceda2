// Package buffer implements the data-buffer, chunk queue, and ring buffer
// primitives described in spec §4.2-§4.3, plus the Slice and Bytes data
// model types of spec §3.
package buffer

import (
	"bytes"
	"sync/atomic"
)

// Slice is an immutable view over bytes owned elsewhere. It never copies
// and is comparable byte-lexicographically.
type Slice struct {
	data []byte
}

// NewSlice wraps data without copying it. Callers must not mutate data
// after handing it to NewSlice.
func NewSlice(data []byte) Slice { return Slice{data: data} }

// Len returns the number of bytes in the slice.
func (s Slice) Len() int { return len(s.data) }

// Bytes returns the underlying byte slice. Callers must not mutate it.
func (s Slice) Bytes() []byte { return s.data }

// Compare orders two slices byte-lexicographically.
func (s Slice) Compare(other Slice) int { return bytes.Compare(s.data, other.data) }

// Equal reports whether the two slices hold identical bytes.
func (s Slice) Equal(other Slice) bool { return bytes.Equal(s.data, other.data) }

// Bytes is a reference-counted, immutable heap buffer. Cloning increments
// the count; the last Release frees the backing array (by dropping the
// reference, letting the GC reclaim it — there is no manual free in Go,
// but the refcount discipline still governs who may read after a release).
type Bytes struct {
	buf  []byte
	refs *atomic.Int32
}

// NewBytes takes ownership of buf and returns a Bytes handle with a
// refcount of 1.
func NewBytes(buf []byte) *Bytes {
	refs := &atomic.Int32{}
	refs.Store(1)
	return &Bytes{buf: buf, refs: refs}
}

// Clone increments the refcount and returns a handle sharing the same
// backing array.
func (b *Bytes) Clone() *Bytes {
	b.refs.Add(1)
	return &Bytes{buf: b.buf, refs: b.refs}
}

// Release decrements the refcount. The final release is a no-op beyond
// bookkeeping since Go's GC reclaims the backing array once unreachable;
// it exists so callers can assert against use-after-release in tests.
func (b *Bytes) Release() int32 {
	return b.refs.Add(-1)
}

// Slice returns an immutable Slice view over the held bytes.
func (b *Bytes) Slice() Slice { return NewSlice(b.buf) }

// Len returns the number of held bytes.
func (b *Bytes) Len() int { return len(b.buf) }
