// Package collections implements the concurrent object-id map, ordered
// tree and skiplist, and intrusive list used to index in-memory objects
// (spec §4.4-§4.6 supporting collections).
package collections

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
)

// ChMap is a concurrent map keyed by a 64-bit object id, sharded into
// power-of-two buckets each guarded by its own RWMutex so lookups on
// different oids never contend, the same per-bucket locking discipline the
// teacher uses for per-tag state in its io runner.
type ChMap[V any] struct {
	buckets []chmBucket[V]
	mask    uint64
}

type chmBucket[V any] struct {
	mu      sync.RWMutex
	entries map[uint64]*chmEntry[V]
}

type chmEntry[V any] struct {
	value V
	refs  atomic.Int32
}

// NewChMap returns a map with at least shardHint buckets (rounded up to a
// power of two; a zero or negative hint yields 16 shards).
func NewChMap[V any](shardHint int) *ChMap[V] {
	if shardHint < 1 {
		shardHint = 16
	}
	size := 1
	for size < shardHint {
		size <<= 1
	}
	m := &ChMap[V]{
		buckets: make([]chmBucket[V], size),
		mask:    uint64(size - 1),
	}
	for i := range m.buckets {
		m.buckets[i].entries = make(map[uint64]*chmEntry[V])
	}
	return m
}

func (m *ChMap[V]) bucket(oid uint64) *chmBucket[V] {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], oid)
	h := xxhash.Checksum64(key[:])
	return &m.buckets[h&m.mask]
}

// TryInsert stores value under oid if no entry exists yet, returning false
// if one was already present.
func (m *ChMap[V]) TryInsert(oid uint64, value V) bool {
	b := m.bucket(oid)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.entries[oid]; exists {
		return false
	}
	e := &chmEntry[V]{value: value}
	e.refs.Store(1)
	b.entries[oid] = e
	return true
}

// Lookup returns the value stored under oid and bumps its refcount, so
// callers must pair a successful Lookup with a Release.
func (m *ChMap[V]) Lookup(oid uint64) (V, bool) {
	b := m.bucket(oid)
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[oid]
	if !ok {
		var zero V
		return zero, false
	}
	e.refs.Add(1)
	return e.value, true
}

// Release drops one reference acquired by Lookup. It does not remove the
// entry; removal only ever happens through Remove.
func (m *ChMap[V]) Release(oid uint64) {
	b := m.bucket(oid)
	b.mu.RLock()
	e, ok := b.entries[oid]
	b.mu.RUnlock()
	if ok {
		e.refs.Add(-1)
	}
}

// Remove deletes the entry for oid if its refcount is at most 1 (the
// implicit reference held by the map itself), returning false if the entry
// is missing or still referenced elsewhere.
func (m *ChMap[V]) Remove(oid uint64) bool {
	b := m.bucket(oid)
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[oid]
	if !ok {
		return false
	}
	if e.refs.Load() > 1 {
		return false
	}
	delete(b.entries, oid)
	return true
}

// Len returns the total number of entries across all buckets.
func (m *ChMap[V]) Len() int {
	total := 0
	for i := range m.buckets {
		m.buckets[i].mu.RLock()
		total += len(m.buckets[i].entries)
		m.buckets[i].mu.RUnlock()
	}
	return total
}
