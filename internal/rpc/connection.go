package rpc

import (
	"net"
	"sync/atomic"
)

// ConnState is one of the four connection lifecycle states of spec
// §4.6's table.
type ConnState int

const (
	// Accepted: listener read-ready, before the user's connected() hook
	// has run.
	Accepted ConnState = iota
	// Connected: connected() returned ok; read/write now drive the
	// connection.
	Connected
	// Draining: disconnected() has been called, but request contexts
	// still hold outstanding references.
	Draining
	// Closed: fd closed and memory freed. Terminal.
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Connected:
		return "connected"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn tracks one client connection's lifecycle state and reference
// count. A disconnect defers the fd close and memory free until
// refcount reaches zero — outstanding request contexts release their
// reference when Exec completes, mirroring how Device/Runner pair their
// own Close() with in-flight operation bookkeeping in the teacher.
type Conn struct {
	Socket net.Conn

	Reader *InboundReader
	Writer *OutboundWriter

	state    atomic.Int32
	refs     atomic.Int32
	onClosed func(*Conn)
}

// NewConn wraps socket in the Accepted state with one reference held on
// behalf of the connection itself (released by Disconnect).
func NewConn(socket net.Conn, h Handlers) *Conn {
	c := &Conn{Socket: socket, Writer: NewOutboundWriter()}
	c.Reader = NewInboundReader(h)
	c.state.Store(int32(Accepted))
	c.refs.Store(1)
	return c
}

// State returns the connection's current lifecycle state.
func (c *Conn) State() ConnState { return ConnState(c.state.Load()) }

// MarkConnected transitions Accepted -> Connected.
func (c *Conn) MarkConnected() { c.state.CompareAndSwap(int32(Accepted), int32(Connected)) }

// AcquireRef adds a reference for an in-flight request context. Returns
// false if the connection is already Closed, in which case the caller
// must not proceed with the request.
func (c *Conn) AcquireRef() bool {
	for {
		if c.State() == Closed {
			return false
		}
		old := c.refs.Load()
		if c.refs.CompareAndSwap(old, old+1) {
			return true
		}
	}
}

// ReleaseRef drops a reference. If this was the last reference and the
// connection is Draining, it transitions to Closed and invokes onClosed.
func (c *Conn) ReleaseRef() {
	if c.refs.Add(-1) == 0 {
		c.maybeFinalize()
	}
}

// Disconnect moves Connected -> Draining and drops the connection's own
// held reference, finalizing immediately if nothing else is
// outstanding.
func (c *Conn) Disconnect(onClosed func(*Conn)) {
	c.onClosed = onClosed
	c.state.CompareAndSwap(int32(Connected), int32(Draining))
	c.state.CompareAndSwap(int32(Accepted), int32(Draining))
	c.ReleaseRef()
}

func (c *Conn) maybeFinalize() {
	if c.State() != Draining {
		return
	}
	if !c.state.CompareAndSwap(int32(Draining), int32(Closed)) {
		return
	}
	c.Socket.Close()
	if c.onClosed != nil {
		c.onClosed(c)
	}
}
