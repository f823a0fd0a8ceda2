//go:build giouring
// +build giouring

// Package reactor: io_uring-backed IOEngine, used by passing
// NewUringEngine's result as Config.Engine. Mirrors the teacher's own
// giouring-tag split (internal/uring/iouring.go vs iouring_stub.go):
// the default build doesn't pull in io_uring at all, this backend is an
// explicit opt-in.
package reactor

import (
	"fmt"
	"time"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"
)

// uringEngine polls socket readiness with IORING_OP_POLL_ADD SQEs rather
// than epoll_wait, keeping the same readiness-reporting IOEngine
// contract: entities still get a Readable/Writable ReadyEvent, there's
// no completion-based read/write plumbing here. That keeps this backend
// a drop-in alternative to the epoll engine instead of a parallel I/O
// path the rest of the reactor would need to special-case.
type uringEngine struct {
	ring *giouring.Ring

	slots []uringSlot
}

type uringSlot struct {
	entity     *Entity
	generation uint64
}

// NewUringEngine creates the io_uring-backed IOEngine with the given
// submission queue depth.
func NewUringEngine(entries uint32) (IOEngine, error) {
	ring, err := giouring.CreateRing(entries)
	if err != nil {
		return nil, fmt.Errorf("reactor: io_uring_setup: %w", err)
	}
	return &uringEngine{ring: ring, slots: make([]uringSlot, 0, 256)}, nil
}

func (en *uringEngine) growSlots(fd int) {
	for len(en.slots) <= fd {
		en.slots = append(en.slots, uringSlot{})
	}
}

func uringPollMaskFor(flags EntityFlags) uint32 {
	mask := uint32(0)
	if flags&FlagRead != 0 {
		mask |= unix.POLLIN
	}
	if flags&FlagWrite != 0 {
		mask |= unix.POLLOUT
	}
	return mask
}

func (en *uringEngine) armPoll(e *Entity) error {
	sqe := en.ring.GetSQE()
	if sqe == nil {
		if _, err := en.ring.Submit(); err != nil {
			return fmt.Errorf("reactor: io_uring submit (backpressure): %w", err)
		}
		sqe = en.ring.GetSQE()
		if sqe == nil {
			return fmt.Errorf("reactor: io_uring submission queue full")
		}
	}
	sqe.PreparePollAdd(int32(e.FD), uringPollMaskFor(e.Flags))
	sqe.UserData = uint64(e.FD)<<32 | e.generation
	return nil
}

func (en *uringEngine) Add(e *Entity) error {
	en.growSlots(e.FD)
	e.generation = en.slots[e.FD].generation + 1
	en.slots[e.FD] = uringSlot{entity: e, generation: e.generation}
	if err := en.armPoll(e); err != nil {
		return err
	}
	_, err := en.ring.Submit()
	return err
}

func (en *uringEngine) Remove(e *Entity) error {
	if e.FD >= 0 && e.FD < len(en.slots) {
		en.slots[e.FD].entity = nil
	}
	if e.callbacks.Close != nil && !e.closed {
		e.closed = true
		e.callbacks.Close(e)
	}
	return nil
}

func (en *uringEngine) Timer(e *Entity, interval time.Duration) error {
	e.Flags |= FlagRead
	return en.Add(e)
}

func (en *uringEngine) UEvent(e *Entity) error {
	e.Flags |= FlagRead
	return en.Add(e)
}

func (en *uringEngine) Notify(e *Entity, data uint64) error {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(data >> (8 * i))
	}
	_, err := unix.Write(e.FD, buf)
	return err
}

func (en *uringEngine) Poll(timeout time.Duration) ([]ReadyEvent, error) {
	_, err := en.ring.SubmitAndWaitTimeout(1, timeout, nil)
	if err != nil && err != giouring.ErrTimeout {
		return nil, fmt.Errorf("reactor: io_uring_enter: %w", err)
	}

	var out []ReadyEvent
	for {
		cqe, err := en.ring.PeekCQE()
		if err != nil {
			break
		}
		fd := int(cqe.UserData >> 32)
		gen := cqe.UserData & 0xffffffff
		en.ring.SeenCQE(cqe)

		if fd < 0 || fd >= len(en.slots) || en.slots[fd].entity == nil || en.slots[fd].generation != gen {
			continue
		}
		ent := en.slots[fd].entity

		switch ent.Type {
		case EntityTimer:
			out = append(out, ReadyEvent{Entity: ent, TimedOut: true})
		case EntityUEvent:
			out = append(out, ReadyEvent{Entity: ent, UEvent: true})
		default:
			re := ReadyEvent{Entity: ent}
			re.Readable = cqe.Res&int32(unix.POLLIN) != 0
			re.Writable = cqe.Res&int32(unix.POLLOUT) != 0
			out = append(out, re)
		}

		// multishot poll isn't assumed; rearm for the next readiness edge.
		en.armPoll(ent)
	}
	if len(out) > 0 {
		en.ring.Submit()
	}
	return out, nil
}

func (en *uringEngine) Close() error {
	en.ring.QueueExit()
	return nil
}

var _ IOEngine = (*uringEngine)(nil)
