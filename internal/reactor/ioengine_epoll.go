package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// epollEngine is the default IOEngine, grounded on the teacher's own use
// of golang.org/x/sys/unix for raw syscalls (SchedSetaffinity, mmap) in
// queue.Runner: this backend extends that "talk to the kernel directly,
// no cgo" discipline to socket polling.
type epollEngine struct {
	epfd int

	// slots holds every entity currently registered, indexed by fd, so
	// Poll can translate a raw epoll_event back into an *Entity without
	// a map lookup per event. generation guards against acting on an
	// event for an fd slot that's since been reused by Remove+Add.
	slots []epollSlot

	events []unix.EpollEvent
}

type epollSlot struct {
	entity     *Entity
	generation uint64
}

// NewEpollEngine creates the epoll-backed IOEngine.
func NewEpollEngine() (IOEngine, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	return &epollEngine{
		epfd:   fd,
		slots:  make([]epollSlot, 0, 256),
		events: make([]unix.EpollEvent, 256),
	}, nil
}

func (en *epollEngine) growSlots(fd int) {
	for len(en.slots) <= fd {
		en.slots = append(en.slots, epollSlot{})
	}
}

func epollMaskFor(flags EntityFlags) uint32 {
	mask := uint32(0)
	if flags&FlagRead != 0 {
		mask |= unix.EPOLLIN
	}
	if flags&FlagWrite != 0 {
		mask |= unix.EPOLLOUT
	}
	if flags&FlagEdgeTriggered != 0 {
		mask |= unix.EPOLLET
	}
	return mask
}

func (en *epollEngine) Add(e *Entity) error {
	en.growSlots(e.FD)
	e.generation = en.slots[e.FD].generation + 1
	en.slots[e.FD] = epollSlot{entity: e, generation: e.generation}

	ev := unix.EpollEvent{Events: epollMaskFor(e.Flags), Fd: int32(e.FD)}
	return unix.EpollCtl(en.epfd, unix.EPOLL_CTL_ADD, e.FD, &ev)
}

func (en *epollEngine) Remove(e *Entity) error {
	if e.FD >= 0 && e.FD < len(en.slots) {
		en.slots[e.FD].entity = nil
	}
	err := unix.EpollCtl(en.epfd, unix.EPOLL_CTL_DEL, e.FD, nil)
	if e.callbacks.Close != nil && !e.closed {
		e.closed = true
		e.callbacks.Close(e)
	}
	return err
}

// Timer registers a timerfd-backed entity; e.FD must be a timerfd
// created by the caller (the event loop creates none of its own).
func (en *epollEngine) Timer(e *Entity, interval time.Duration) error {
	spec := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(interval.Nanoseconds()),
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(e.FD, 0, &spec, nil); err != nil {
		return fmt.Errorf("reactor: timerfd_settime: %w", err)
	}
	e.Flags |= FlagRead
	return en.Add(e)
}

// UEvent registers an eventfd-backed entity used for cross-core wakeups.
func (en *epollEngine) UEvent(e *Entity) error {
	e.Flags |= FlagRead
	return en.Add(e)
}

// Notify writes to the eventfd behind e, waking whatever core is blocked
// in Poll on it.
func (en *epollEngine) Notify(e *Entity, data uint64) error {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(data >> (8 * i))
	}
	_, err := unix.Write(e.FD, buf)
	return err
}

func (en *epollEngine) Poll(timeout time.Duration) ([]ReadyEvent, error) {
	ms := int(timeout / time.Millisecond)
	if timeout < 0 {
		ms = -1
	}
	n, err := unix.EpollWait(en.epfd, en.events, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("reactor: epoll_wait: %w", err)
	}

	out := make([]ReadyEvent, 0, n)
	for i := 0; i < n; i++ {
		ev := en.events[i]
		fd := int(ev.Fd)
		if fd < 0 || fd >= len(en.slots) || en.slots[fd].entity == nil {
			continue // stale: removed between epoll_wait returning and us reading it
		}
		ent := en.slots[fd].entity

		switch ent.Type {
		case EntityTimer:
			drainTimerfd(fd)
			out = append(out, ReadyEvent{Entity: ent, TimedOut: true})
		case EntityUEvent:
			data := drainEventfd(fd)
			out = append(out, ReadyEvent{Entity: ent, UEvent: true, UEventData: data})
		default:
			re := ReadyEvent{Entity: ent}
			re.Readable = ev.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0
			re.Writable = ev.Events&unix.EPOLLOUT != 0
			out = append(out, re)
		}
	}
	return out, nil
}

func drainTimerfd(fd int) {
	var buf [8]byte
	unix.Read(fd, buf[:])
}

func drainEventfd(fd int) uint64 {
	var buf [8]byte
	n, _ := unix.Read(fd, buf[:])
	if n != 8 {
		return 0
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return v
}

func (en *epollEngine) Close() error {
	return unix.Close(en.epfd)
}

var _ IOEngine = (*epollEngine)(nil)
