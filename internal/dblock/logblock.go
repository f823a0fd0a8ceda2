package dblock

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
)

const logBucketCount = 256 // power of two
const logRecordOverhead = 2 + 2 + 4 + 4 // keyLen, valLen, keyOff, bucketNext

// logRecord is one entry in the block's stable record table: once
// appended its slot index never changes, so hash-bucket chains (which
// reference record indices) stay valid even if Prepend later changes
// where the entry falls in iteration order.
type logRecord struct {
	keyOff     int32
	bucketNext int32
}

// LogBlock is the append-only, hash-indexed data-block format of spec
// §4.4, used when key order doesn't matter and a flat index is cheaper to
// maintain than a balanced tree.
type LogBlock struct {
	blkSize  int
	blkAvail int

	arena   []byte
	records []logRecord // stable slots, indexed by bucket chains
	order   []int32     // iteration order, a permutation of record indices
	buckets []int32     // head record index per bucket, -1 if empty
}

var _ Block = (*LogBlock)(nil)

// Init resets the block to empty with the given size budget.
func (b *LogBlock) Init(size int) {
	b.blkSize = size
	b.blkAvail = size
	b.arena = b.arena[:0]
	b.records = b.records[:0]
	b.order = b.order[:0]
	b.buckets = make([]int32, logBucketCount)
	for i := range b.buckets {
		b.buckets[i] = -1
	}
}

// MaxOverhead returns the worst-case non-payload bytes needed per entry.
func (b *LogBlock) MaxOverhead() int { return logRecordOverhead }

// HasSpace reports whether an entry of the given sizes would fit.
func (b *LogBlock) HasSpace(keyLen, valLen int) bool {
	return b.blkAvail >= b.MaxOverhead()+keyLen+valLen
}

// Stats reports the block header fields.
func (b *LogBlock) Stats() Stats {
	return Stats{KVCount: len(b.order), BlkSize: b.blkSize, BlkAvail: b.blkAvail, IsSorted: false}
}

func logBucketOf(key []byte) int {
	return int(xxhash.Checksum64(key) % logBucketCount)
}

func (b *LogBlock) readRecord(off int32) (key, value []byte) {
	o := int(off)
	keyLen := int(binary.BigEndian.Uint16(b.arena[o : o+2]))
	key = b.arena[o+2 : o+2+keyLen]
	valOff := o + 2 + keyLen
	valLen := int(binary.BigEndian.Uint16(b.arena[valOff : valOff+2]))
	value = b.arena[valOff+2 : valOff+2+valLen]
	return
}

func (b *LogBlock) appendArena(key, value []byte) int32 {
	off := int32(len(b.arena))
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(key)))
	b.arena = append(b.arena, hdr[:]...)
	b.arena = append(b.arena, key...)
	binary.BigEndian.PutUint16(hdr[:], uint16(len(value)))
	b.arena = append(b.arena, hdr[:]...)
	b.arena = append(b.arena, value...)
	return off
}

// lookupRecord scans the key's hash bucket chain (the "probe window")
// for an exact match, returning its stable record index or -1.
func (b *LogBlock) lookupRecord(key []byte) int32 {
	bucket := logBucketOf(key)
	for idx := b.buckets[bucket]; idx != -1; idx = b.records[idx].bucketNext {
		k, _ := b.readRecord(b.records[idx].keyOff)
		if string(k) == string(key) {
			return idx
		}
	}
	return -1
}

func (b *LogBlock) linkBucket(key []byte, recordIdx int32) {
	bucket := logBucketOf(key)
	b.records[recordIdx].bucketNext = b.buckets[bucket]
	b.buckets[bucket] = recordIdx
}

// newRecord appends a fresh, stable record slot and returns its index.
func (b *LogBlock) newRecord(key, value []byte) int32 {
	off := b.appendArena(key, value)
	b.records = append(b.records, logRecord{keyOff: off, bucketNext: -1})
	idx := int32(len(b.records) - 1)
	b.linkBucket(key, idx)
	b.blkAvail -= logRecordOverhead + len(key) + len(value)
	return idx
}

// Insert appends key/value at the end of iteration order, or overwrites
// an existing key's value without changing its position in that order.
func (b *LogBlock) Insert(key, value []byte) error {
	if !b.HasSpace(len(key), len(value)) {
		return ErrBlockFull
	}
	if existing := b.lookupRecord(key); existing != -1 {
		off := b.appendArena(key, value)
		b.blkAvail -= logRecordOverhead + len(key) + len(value)
		b.records[existing].keyOff = off
		return nil
	}
	idx := b.newRecord(key, value)
	b.order = append(b.order, idx)
	return nil
}

// Append is equivalent to Insert for a log block: both add at the
// logical end of iteration order.
func (b *LogBlock) Append(key, value []byte) error { return b.Insert(key, value) }

// Prepend inserts key/value at the front of iteration order. The
// underlying arena and record table remain append-only; only the
// iteration-order list gains a new entry at its head.
func (b *LogBlock) Prepend(key, value []byte) error {
	if !b.HasSpace(len(key), len(value)) {
		return ErrBlockFull
	}
	idx := b.newRecord(key, value)
	b.order = append(b.order, 0)
	copy(b.order[1:], b.order[:len(b.order)-1])
	b.order[0] = idx
	return nil
}

// Lookup returns the value stored under key.
func (b *LogBlock) Lookup(key []byte) ([]byte, bool) {
	idx := b.lookupRecord(key)
	if idx == -1 {
		return nil, false
	}
	_, v := b.readRecord(b.records[idx].keyOff)
	return v, true
}

// GetIptr returns the arena offset of the value bytes for key.
func (b *LogBlock) GetIptr(key []byte) (int, bool) {
	idx := b.lookupRecord(key)
	if idx == -1 {
		return 0, false
	}
	k, _ := b.readRecord(b.records[idx].keyOff)
	return int(b.records[idx].keyOff) + 2 + len(k) + 2, true
}

// FirstKey returns the first key in iteration order.
func (b *LogBlock) FirstKey() ([]byte, bool) {
	if len(b.order) == 0 {
		return nil, false
	}
	k, _ := b.readRecord(b.records[b.order[0]].keyOff)
	return k, true
}

// LastKey returns the last key in iteration order.
func (b *LogBlock) LastKey() ([]byte, bool) {
	if len(b.order) == 0 {
		return nil, false
	}
	k, _ := b.readRecord(b.records[b.order[len(b.order)-1]].keyOff)
	return k, true
}

// orderPosOf returns the iteration-order position of record index idx, or
// -1 if not found (a linear scan, acceptable for the small record counts
// a single block holds).
func (b *LogBlock) orderPosOf(idx int32) int {
	for i, v := range b.order {
		if v == idx {
			return i
		}
	}
	return -1
}

// Seek positions an iterator over iteration order (SeekBegin/SeekEnd) or
// by key lookup (SeekKey/SeekKeyExact both resolve to an exact match,
// since a log block carries no ordering to find a ceiling with).
func (b *LogBlock) Seek(pos SeekPos, key []byte) Iter {
	switch pos {
	case SeekBegin:
		return Iter{valid: len(b.order) > 0, pos: 0}
	case SeekEnd:
		return Iter{valid: len(b.order) > 0, pos: len(b.order) - 1}
	default:
		idx := b.lookupRecord(key)
		if idx == -1 {
			return Iter{}
		}
		p := b.orderPosOf(idx)
		return Iter{valid: p != -1, pos: p}
	}
}

// SeekNext advances it to the next record in iteration order.
func (b *LogBlock) SeekNext(it Iter) (Iter, bool) {
	if !it.valid || it.pos+1 >= len(b.order) {
		return Iter{}, false
	}
	return Iter{valid: true, pos: it.pos + 1}, true
}

// SeekPrev moves it to the previous record in iteration order.
func (b *LogBlock) SeekPrev(it Iter) (Iter, bool) {
	if !it.valid || it.pos == 0 {
		return Iter{}, false
	}
	return Iter{valid: true, pos: it.pos - 1}, true
}

// SeekItem materializes the key and value at it.
func (b *LogBlock) SeekItem(it Iter) (key, value []byte, ok bool) {
	if !it.valid || it.pos >= len(b.order) {
		return nil, nil, false
	}
	k, v := b.readRecord(b.records[b.order[it.pos]].keyOff)
	return k, v, true
}
