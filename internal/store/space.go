package store

import (
	"sort"
	"sync"

	raleighsl "github.com/ehrlich-b/raleighsl"
)

// extent is a free byte range [Offset, Offset+Size) in a FreeListSpace.
type extent struct {
	Offset uint64
	Size   uint64
}

// FreeListSpace allocates extents of a monotonic device address space
// from a sorted free list, coalescing adjacent extents on Free the way
// a simple buddy-less allocator does. Reserved for the Space plugin
// family named in spec §4.8; no teacher analogue existed for this
// concern so layout follows the same sorted-slice-plus-mutex style as
// the rest of this package's plugins.
type FreeListSpace struct {
	mu    sync.Mutex
	free  []extent
	total uint64
}

// NewFreeListSpace returns a Space plugin managing a single extent of
// size bytes starting at offset zero.
func NewFreeListSpace(size uint64) *FreeListSpace {
	return &FreeListSpace{
		free:  []extent{{Offset: 0, Size: size}},
		total: size,
	}
}

func (s *FreeListSpace) Init() error   { return nil }
func (s *FreeListSpace) Load() error   { return nil }
func (s *FreeListSpace) Unload() error { return nil }
func (s *FreeListSpace) Sync() error   { return nil }

// Alloc finds the first free extent at least size bytes long,
// carving it out (first-fit).
func (s *FreeListSpace) Alloc(size uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.free {
		if e.Size < size {
			continue
		}
		offset := e.Offset
		if e.Size == size {
			s.free = append(s.free[:i], s.free[i+1:]...)
		} else {
			s.free[i] = extent{Offset: e.Offset + size, Size: e.Size - size}
		}
		return offset, nil
	}
	return 0, raleighsl.NewError("space.alloc", raleighsl.CodeNoMemory, "no free extent large enough")
}

// Free returns [offset, offset+size) to the free list, merging with
// any adjacent extents.
func (s *FreeListSpace) Free(offset, size uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.free = append(s.free, extent{Offset: offset, Size: size})
	sort.Slice(s.free, func(i, j int) bool { return s.free[i].Offset < s.free[j].Offset })

	merged := s.free[:1]
	for _, e := range s.free[1:] {
		last := &merged[len(merged)-1]
		if last.Offset+last.Size == e.Offset {
			last.Size += e.Size
			continue
		}
		merged = append(merged, e)
	}
	s.free = merged
}
