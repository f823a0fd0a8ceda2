package reactor

import (
	"errors"
	"time"
)

// ErrEngineClosed is returned by IOEngine methods called after Close.
var ErrEngineClosed = errors.New("reactor: io engine closed")

// ReadyEvent is one entry of what IOEngine.Poll returns: which entity
// became ready, and in what way.
type ReadyEvent struct {
	Entity     *Entity
	Readable   bool
	Writable   bool
	TimedOut   bool
	UEvent     bool
	UEventData uint64
}

// IOEngine abstracts the OS polling primitive behind one small contract,
// so the event loop itself never branches on epoll vs. io_uring. Add and
// Remove register interest; Timer and UEvent register the loop's two
// synthetic entity kinds; Notify wakes a Poll call blocked on another
// core (used for the task run-queue's empty-to-non-empty signal); Poll
// blocks up to timeout and returns every entity that became ready.
type IOEngine interface {
	Add(e *Entity) error
	Remove(e *Entity) error
	Timer(e *Entity, interval time.Duration) error
	UEvent(e *Entity) error
	Notify(e *Entity, data uint64) error
	Poll(timeout time.Duration) ([]ReadyEvent, error)
	Close() error
}

// Observer receives the reactor's own operational telemetry. It mirrors
// the shape of the teacher's Observer interface (ObserveRead/Write/...)
// but reports on the loop itself rather than on block I/O.
type Observer interface {
	ObservePoll(latency time.Duration, readyCount int)
	ObserveTask(latency time.Duration)
	ObserveEntityError(e *Entity, err error)
}

// NoOpObserver discards everything.
type NoOpObserver struct{}

func (NoOpObserver) ObservePoll(time.Duration, int)       {}
func (NoOpObserver) ObserveTask(time.Duration)             {}
func (NoOpObserver) ObserveEntityError(*Entity, error)     {}

var _ Observer = NoOpObserver{}
