package reactor

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEpollEngineReportsReadable(t *testing.T) {
	engine, err := NewEpollEngine()
	require.NoError(t, err)
	defer engine.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	var gotRead atomic.Bool
	e := NewEntity(int(r.Fd()), EntitySocket, Callbacks{
		Read: func(*Entity) { gotRead.Store(true) },
	}, nil)
	e.Flags = FlagRead
	require.NoError(t, engine.Add(e))

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	events, err := engine.Poll(time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.True(t, events[0].Readable)
}

func TestEventLoopDispatchesReadyEntities(t *testing.T) {
	engine, err := NewEpollEngine()
	require.NoError(t, err)

	el, err := NewEventLoop(Config{Engine: engine, PollTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer el.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	var reads atomic.Int32
	e := NewEntity(int(r.Fd()), EntitySocket, Callbacks{
		Read: func(*Entity) { reads.Add(1) },
	}, nil)
	e.Flags = FlagRead
	require.NoError(t, el.Engine().Add(e))

	done := make(chan struct{})
	go func() {
		defer close(done)
		el.Run(context.Background())
	}()

	_, err = w.Write([]byte("ping"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return reads.Load() > 0 }, time.Second, time.Millisecond)

	el.Stop()
	<-done
}

func TestEventLoopTaskRunsOnNextTick(t *testing.T) {
	engine, err := NewEpollEngine()
	require.NoError(t, err)

	el, err := NewEventLoop(Config{Engine: engine, PollTimeout: 10 * time.Millisecond})
	require.NoError(t, err)
	defer el.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		el.Run(context.Background())
	}()

	var ran atomic.Bool
	el.Tasks().Add(&VTask{Run: func() { ran.Store(true) }})

	require.Eventually(t, func() bool { return ran.Load() }, time.Second, time.Millisecond)

	el.Stop()
	<-done
}
