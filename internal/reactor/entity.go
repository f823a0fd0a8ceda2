// Package reactor implements the event-loop runtime that hosts RPC
// connections and periodic work: one IOEngine-backed poll loop per core,
// each driving its own set of entities and a nestable task run-queue.
package reactor

import "time"

// EntityType distinguishes what an Entity's file descriptor actually is,
// since the same callback vtable services sockets, timers, and the
// cross-core wakeup eventfd.
type EntityType int

const (
	EntitySocket EntityType = iota
	EntityTimer
	EntityUEvent
)

// EntityFlags are bit flags the IOEngine checks when arming interest.
type EntityFlags uint32

const (
	FlagRead EntityFlags = 1 << iota
	FlagWrite
	FlagEdgeTriggered
)

// Callbacks is the per-entity vtable. The loop guarantees a single
// entity's callbacks are never invoked concurrently with each other and
// that Close runs exactly once, no matter how many pending events an
// entity had queued at the time it was removed.
type Callbacks struct {
	Read    func(e *Entity)
	Write   func(e *Entity)
	UEvent  func(e *Entity, data uint64)
	Timeout func(e *Entity)
	Close   func(e *Entity)
}

// Entity is one thing an EventLoop polls: a connection socket, a timer,
// or the loop's own cross-core notification eventfd. generation guards
// against acting on a stale event that arrived for an fd slot the loop
// has already reused (the same defense the teacher's per-tag state slot
// gives against a completion for a tag that has moved on).
type Entity struct {
	FD          int
	Type        EntityType
	Flags       EntityFlags
	LastWriteTS time.Time

	generation uint64
	callbacks  Callbacks
	closed     bool
	userData   any
}

// NewEntity wraps fd with the given type and callback vtable. userData
// is an opaque value the owner can retrieve later (e.g. the *rpc.Conn a
// socket entity belongs to).
func NewEntity(fd int, typ EntityType, cb Callbacks, userData any) *Entity {
	return &Entity{FD: fd, Type: typ, callbacks: cb, userData: userData}
}

// UserData returns the opaque value passed to NewEntity.
func (e *Entity) UserData() any { return e.userData }

// Generation returns the slot generation this entity was registered
// under, used by IOEngine backends to discard stale events.
func (e *Entity) Generation() uint64 { return e.generation }
