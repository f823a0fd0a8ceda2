// Package constants holds tunables shared across the reactor, RPC framing,
// and object store packages.
package constants

import "time"

// Frame limits (spec §6: wire protocol is bit-exact).
const (
	// MaxFrameHeaderBytes is the largest possible frame header: byte0 plus
	// up to 4 bytes of frame-length and up to 3 bytes of forward-length.
	MaxFrameHeaderBytes = 8

	// MinFrameHeaderBytes is byte0 plus a single frame-length byte.
	MinFrameHeaderBytes = 2

	// MaxMessageHeadBytes bounds msg_type (up to 8 bytes) + req_id (up to 8
	// bytes) + the head byte itself.
	MaxMessageHeadBytes = 17

	// InboundScratchSize is the fixed read-ahead buffer size used by the
	// inbound frame reader before bytes are handed to the partial parser.
	InboundScratchSize = 256

	// MaxGatherIovecs bounds how many iovecs OutboundWriter.Flush gathers
	// per writev call.
	MaxGatherIovecs = 16
)

// Data-block defaults (spec §3, §4.4).
const (
	// DefaultBlockSize is the default fixed size of a sorted-set or log
	// data block.
	DefaultBlockSize = 1 << 20

	// DBufNodeSize is the size of one data-buffer chunk (spec §4.2).
	DBufNodeSize = 256

	// ChunkSize is the fixed size of one ChunkQueue node (spec §4.3).
	ChunkSize = 4096
)

// Reactor defaults (spec §4.5, §5).
const (
	// DefaultRunQueueCapacity is a default run-queue size exported for
	// embedders. TaskRQ does not read it: a run-queue is unbounded.
	DefaultRunQueueCapacity = 4096

	// DefaultIdleTimeout is a default connection idle timeout exported for
	// embedders. No connection code in this module reads it, so idle
	// connections are not closed automatically.
	DefaultIdleTimeout = 5 * time.Minute

	// DefaultQuantum bounds one exec() pass over the task run-queue.
	DefaultQuantum = 2 * time.Millisecond
)

// LatencyBuckets are the upper bounds, in nanoseconds, of the latency
// histogram kept by the root package's Metrics, logarithmically spaced
// from 5us to 5s.
var LatencyBuckets = []uint64{
	5_000,
	50_000,
	500_000,
	5_000_000,
	50_000_000,
	500_000_000,
	5_000_000_000,
}

const NumLatencyBuckets = 7

// Object store defaults (spec §4.8).
const (
	// SemanticKeySize is the width of a SemanticEntry key: SHA-256 of the
	// human-readable name.
	SemanticKeySize = 32

	// DefaultObjectCacheSize is a default object cache size exported for
	// embedders. The store's object cache does not read it: it has no size
	// bound and never evicts.
	DefaultObjectCacheSize = 4096

	// FormatUUIDSize is the width of each UUID the Format plugin emits.
	FormatUUIDSize = 16
)
