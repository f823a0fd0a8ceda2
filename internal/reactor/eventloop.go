package reactor

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/raleighsl/internal/constants"
	"github.com/ehrlich-b/raleighsl/internal/logging"
)

// Config configures one EventLoop.
type Config struct {
	// CoreID is this loop's logical core index, used both for CPU
	// affinity pinning and to round-robin which entry of CPUAffinity it
	// pins to, exactly as the teacher's ioLoop does for queueID.
	CoreID int
	// CPUAffinity lists OS CPU numbers available for pinning. If empty,
	// the loop doesn't pin at all (useful off Linux or in tests).
	CPUAffinity []int
	// PollTimeout bounds how long one Poll call blocks when no deadline
	// is closer.
	PollTimeout time.Duration
	// Quantum bounds one exec() pass over the task run-queue.
	Quantum time.Duration

	Engine   IOEngine
	Observer Observer
}

// EventLoop is one core's reactor: an IOEngine polling entities, a task
// run-queue drained once per iteration, and one synthetic eventfd-backed
// uevent entity for wakeups (the loop creates no timer entity of its
// own). One OS thread runs exactly one EventLoop, pinned
// via unix.SchedSetaffinity the same way queue.Runner.ioLoop pins its
// goroutine before entering its own for-select loop.
type EventLoop struct {
	cfg Config

	engine   IOEngine
	observer Observer

	tasks *TaskRQ

	uEventEntity *Entity
	uEventFD     int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEventLoop builds a loop around cfg.Engine. The loop creates and
// owns an eventfd-backed entity for cross-core task handoff; callers
// never touch it directly, they go through Tasks().Add from any
// goroutine and the loop wakes itself.
func NewEventLoop(cfg Config) (*EventLoop, error) {
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = 100 * time.Millisecond
	}
	if cfg.Quantum == 0 {
		cfg.Quantum = constants.DefaultQuantum
	}
	if cfg.Observer == nil {
		cfg.Observer = NoOpObserver{}
	}

	el := &EventLoop{cfg: cfg, engine: cfg.Engine, observer: cfg.Observer}
	el.ctx, el.cancel = context.WithCancel(context.Background())
	el.tasks = NewChildTaskRQ(nil, el.wake)

	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	el.uEventFD = fd
	el.uEventEntity = NewEntity(fd, EntityUEvent, Callbacks{}, nil)
	if err := el.engine.UEvent(el.uEventEntity); err != nil {
		return nil, err
	}

	return el, nil
}

// Tasks returns the loop's top-level run-queue. Safe to call Add on
// from any goroutine; everything else about TaskRQ assumes single-loop
// ownership.
func (el *EventLoop) Tasks() *TaskRQ { return el.tasks }

// Engine returns the loop's IOEngine, so callers can Add/Remove their
// own entities (e.g. a freshly accepted connection socket).
func (el *EventLoop) Engine() IOEngine { return el.engine }

func (el *EventLoop) wake() {
	el.engine.Notify(el.uEventEntity, 0)
}

// Run pins the calling goroutine's OS thread to cfg.CPUAffinity[CoreID
// % len] and drives the loop until ctx is done or Stop is called.
// Mirrors queue.Runner.ioLoop: LockOSThread before affinity, one
// infinite poll-then-drain cycle, clean unlock on return.
func (el *EventLoop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if len(el.cfg.CPUAffinity) > 0 {
		cpu := el.cfg.CPUAffinity[el.cfg.CoreID%len(el.cfg.CPUAffinity)]
		var set unix.CPUSet
		set.Zero()
		set.Set(cpu)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			logging.Warn("reactor: SchedSetaffinity failed", "core", el.cfg.CoreID, "cpu", cpu, "err", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-el.ctx.Done():
			return nil
		default:
		}
		if err := el.tick(); err != nil {
			return err
		}
	}
}

// tick is one poll-then-exec iteration: drain every ready entity's
// callback without submitting anything back to the engine mid-loop,
// then run the task queue, mirroring processRequests' "N completions,
// one flush" batching — here the "flush" is simply that entities are
// free to call engine.Add/Remove from their callbacks and those take
// effect for the *next* Poll, not this one.
func (el *EventLoop) tick() error {
	start := time.Now()
	events, err := el.engine.Poll(el.cfg.PollTimeout)
	if err != nil {
		return err
	}
	el.observer.ObservePoll(time.Since(start), len(events))

	for _, ev := range events {
		el.dispatch(ev)
	}

	taskStart := time.Now()
	deadline, cancel := context.WithTimeout(context.Background(), el.cfg.Quantum)
	el.tasks.Drain(deadline)
	cancel()
	el.observer.ObserveTask(time.Since(taskStart))

	return nil
}

// dispatch invokes the one callback that applies to ev. Never called
// reentrantly for the same entity: Poll only returns a given fd once
// per call, and tick() runs its whole event slice to completion before
// the next Poll.
func (el *EventLoop) dispatch(ev ReadyEvent) {
	e := ev.Entity
	if e == nil || e.closed {
		return
	}
	switch {
	case ev.TimedOut:
		if e.callbacks.Timeout != nil {
			e.callbacks.Timeout(e)
		}
	case ev.UEvent:
		if e.callbacks.UEvent != nil {
			e.callbacks.UEvent(e, ev.UEventData)
		}
	default:
		if ev.Readable && e.callbacks.Read != nil {
			e.callbacks.Read(e)
		}
		if ev.Writable && !e.closed {
			e.LastWriteTS = time.Now()
			if e.callbacks.Write != nil {
				e.callbacks.Write(e)
			}
		}
	}
}

// Stop requests the loop exit at the next tick boundary.
func (el *EventLoop) Stop() {
	el.cancel()
	el.wake()
}

// Close releases the loop's engine and synthetic entities. Call after
// Run has returned.
func (el *EventLoop) Close() error {
	el.engine.Remove(el.uEventEntity)
	unix.Close(el.uEventFD)
	return el.engine.Close()
}
