package rpc

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/raleighsl/internal/constants"
)

func TestOutboundWriterFlushesQueuedMessages(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	w := NewOutboundWriter()
	wasEmpty := w.Enqueue([]byte("hello "))
	require.True(t, wasEmpty)
	wasEmpty = w.Enqueue([]byte("world"))
	require.False(t, wasEmpty)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, drained, err := w.Flush(server)
		require.NoError(t, err)
		require.True(t, drained)
	}()

	buf := make([]byte, 11)
	n, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(buf[:n]))
	<-done
	require.False(t, w.Pending())
}

func TestOutboundWriterGatherCap(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go io.Copy(io.Discard, client)

	w := NewOutboundWriter()
	for i := 0; i < 20; i++ {
		w.Enqueue([]byte{byte(i)})
	}
	written, drained, err := w.Flush(server)
	require.NoError(t, err)
	require.Equal(t, constants.MaxGatherIovecs, written)
	require.False(t, drained)
	require.True(t, w.Pending())
}
