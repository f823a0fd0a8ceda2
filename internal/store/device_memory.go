package store

import (
	"sync"

	raleighsl "github.com/ehrlich-b/raleighsl"
)

// memoryShardSize is the span of bytes one RWMutex guards, the same
// 64KB granularity the teacher's in-memory backend shards by so
// parallel I/O from independent objects rarely contends.
const memoryShardSize = 64 * 1024

// MemoryDevice is an in-memory DevicePlugin, grounded directly on the
// teacher's sharded-RWMutex RAM backend: reads and writes only lock
// the shards spanning the requested range.
type MemoryDevice struct {
	data   []byte
	size   int64
	shards []sync.RWMutex
}

// NewMemoryDevice allocates an in-memory device of size bytes.
func NewMemoryDevice(size int64) *MemoryDevice {
	numShards := (size + memoryShardSize - 1) / memoryShardSize
	if numShards < 1 {
		numShards = 1
	}
	return &MemoryDevice{
		data:   make([]byte, size),
		size:   size,
		shards: make([]sync.RWMutex, numShards),
	}
}

func (m *MemoryDevice) Init() error   { return nil }
func (m *MemoryDevice) Load() error   { return nil }
func (m *MemoryDevice) Unload() error { return nil }
func (m *MemoryDevice) Sync() error   { return nil }

func (m *MemoryDevice) shardRange(off, length int64) (start, end int) {
	start = int(off / memoryShardSize)
	end = int((off + length - 1) / memoryShardSize)
	if end >= len(m.shards) {
		end = len(m.shards) - 1
	}
	if end < start {
		end = start
	}
	return start, end
}

func (m *MemoryDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= m.size {
		return 0, nil
	}
	available := m.size - off
	if int64(len(p)) > available {
		p = p[:available]
	}
	start, end := m.shardRange(off, int64(len(p)))
	for i := start; i <= end; i++ {
		m.shards[i].RLock()
	}
	n := copy(p, m.data[off:off+int64(len(p))])
	for i := start; i <= end; i++ {
		m.shards[i].RUnlock()
	}
	return n, nil
}

func (m *MemoryDevice) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= m.size {
		return 0, raleighsl.NewError("device.write", raleighsl.CodeInvalidArgument, "write beyond end of device")
	}
	available := m.size - off
	if int64(len(p)) > available {
		p = p[:available]
	}
	start, end := m.shardRange(off, int64(len(p)))
	for i := start; i <= end; i++ {
		m.shards[i].Lock()
	}
	n := copy(m.data[off:off+int64(len(p))], p)
	for i := start; i <= end; i++ {
		m.shards[i].Unlock()
	}
	return n, nil
}

func (m *MemoryDevice) Size() int64 { return m.size }
