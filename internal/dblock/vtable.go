// Package dblock implements the fixed-size data-block formats of spec
// §4.4: a sorted AVL16 key/value index and an append-only log block,
// sharing one vtable contract so callers don't care which is underneath.
package dblock

import "errors"

// ErrBlockFull is returned by Insert/Append/Prepend when the block cannot
// fit another entry, leaving the block byte-identical to before the call.
var ErrBlockFull = errors.New("dblock: not enough space for entry")

// SeekPos selects where a Seek call positions its iterator.
type SeekPos int

const (
	SeekBegin SeekPos = iota
	SeekEnd
	SeekKey      // first key >= target
	SeekKeyExact // target key, or not-found
)

// Iter is an opaque cursor into a block. Its zero value is not valid;
// obtain one from Seek.
type Iter struct {
	valid bool
	node  int32
	pos   int // used by log blocks, where iteration is a flat index
}

// Valid reports whether the iterator refers to a live entry.
func (it Iter) Valid() bool { return it.valid }

// Stats mirrors the block header fields named in spec §4.4.
type Stats struct {
	KVCount  int
	BlkSize  int
	BlkAvail int
	IsSorted bool
}

// Block is the shared contract between AVL16Block and LogBlock.
type Block interface {
	Init(size int)

	Lookup(key []byte) (value []byte, ok bool)
	FirstKey() ([]byte, bool)
	LastKey() ([]byte, bool)
	GetIptr(key []byte) (valueOffset int, ok bool)

	Seek(pos SeekPos, key []byte) Iter
	SeekNext(it Iter) (Iter, bool)
	SeekPrev(it Iter) (Iter, bool)
	SeekItem(it Iter) (key, value []byte, ok bool)

	Insert(key, value []byte) error
	Append(key, value []byte) error
	Prepend(key, value []byte) error

	HasSpace(keyLen, valLen int) bool
	MaxOverhead() int
	Stats() Stats
}
