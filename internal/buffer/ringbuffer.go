package buffer

import "sync/atomic"

// ringSlot carries one queued element plus a sequence number used to
// synchronize producers and consumers without a mutex, the same odd/even
// sequence-guarded handoff the feeder's shared-memory ring uses to publish
// a quote without ever blocking the writer.
type ringSlot[T any] struct {
	seq   atomic.Uint64
	value T
}

// RingBuffer is a fixed-capacity, multi-producer/multi-consumer lock-free
// ring (Vyukov's bounded queue). Push fails rather than blocks once full;
// Pop fails rather than blocks once empty. Capacity is rounded up to the
// next power of two.
type RingBuffer[T any] struct {
	mask  uint64
	slots []ringSlot[T]
	head  atomic.Uint64
	tail  atomic.Uint64
}

// NewRingBuffer returns a ring sized to hold at least capacity elements.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	rb := &RingBuffer[T]{
		mask:  uint64(size - 1),
		slots: make([]ringSlot[T], size),
	}
	for i := range rb.slots {
		rb.slots[i].seq.Store(uint64(i))
	}
	return rb
}

// Cap returns the ring's fixed capacity.
func (rb *RingBuffer[T]) Cap() int { return len(rb.slots) }

// Push enqueues v, returning false if the ring is full.
func (rb *RingBuffer[T]) Push(v T) bool {
	pos := rb.head.Load()
	for {
		slot := &rb.slots[pos&rb.mask]
		seq := slot.seq.Load()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if rb.head.CompareAndSwap(pos, pos+1) {
				slot.value = v
				slot.seq.Store(pos + 1)
				return true
			}
			pos = rb.head.Load()
		case diff < 0:
			return false
		default:
			pos = rb.head.Load()
		}
	}
}

// Pop dequeues the oldest element, returning false if the ring is empty.
func (rb *RingBuffer[T]) Pop() (T, bool) {
	pos := rb.tail.Load()
	for {
		slot := &rb.slots[pos&rb.mask]
		seq := slot.seq.Load()
		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if rb.tail.CompareAndSwap(pos, pos+1) {
				v := slot.value
				var zero T
				slot.value = zero
				slot.seq.Store(pos + rb.mask + 1)
				return v, true
			}
			pos = rb.tail.Load()
		case diff < 0:
			var zero T
			return zero, false
		default:
			pos = rb.tail.Load()
		}
	}
}
