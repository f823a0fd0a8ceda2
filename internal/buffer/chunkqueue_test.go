package buffer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkQueueAppendPop(t *testing.T) {
	q := NewChunkQueue()
	q.Append([]byte("hello "))
	q.Append([]byte("world"))
	require.Equal(t, 11, q.Size())

	require.Equal(t, []byte("hello world"), q.Pop(11))
	require.Equal(t, 0, q.Size())
}

func TestChunkQueueAppendSpansChunks(t *testing.T) {
	q := NewChunkQueue()
	payload := bytes.Repeat([]byte("y"), chunkSize*3+7)
	q.Append(payload)
	require.Equal(t, len(payload), q.Size())
	require.Equal(t, payload, q.Pop(len(payload)))
}

func TestChunkQueuePrepend(t *testing.T) {
	q := NewChunkQueue()
	q.Append([]byte("world"))
	q.Prepend([]byte("hello "))
	require.Equal(t, []byte("hello world"), q.Pop(q.Size()))
}

func TestChunkQueueReadAtDoesNotConsume(t *testing.T) {
	q := NewChunkQueue()
	q.Append([]byte("abcdef"))

	require.Equal(t, []byte("cde"), q.ReadAt(2, 3))
	require.Equal(t, 6, q.Size())
}

func TestChunkQueueFetchFromAndPushTo(t *testing.T) {
	q := NewChunkQueue()
	r := strings.NewReader("streamed-payload")
	n, err := q.FetchFrom(r, len("streamed-payload"))
	require.NoError(t, err)
	require.Equal(t, len("streamed-payload"), n)

	var out bytes.Buffer
	written, err := q.PushTo(&out)
	require.NoError(t, err)
	require.Equal(t, len("streamed-payload"), written)
	require.Equal(t, "streamed-payload", out.String())
	require.Equal(t, 0, q.Size())
}

func TestChunkQueueIndexOfAndMemcmp(t *testing.T) {
	q := NewChunkQueue()
	q.Append([]byte("foo=bar;baz=qux"))

	idx := q.IndexOf([]byte{';'})
	require.Equal(t, len("foo=bar"), idx)
	require.Equal(t, 0, q.Memcmp(0, []byte("foo=bar")))
	require.NotEqual(t, 0, q.Memcmp(0, []byte("foo=baz")))
}

func TestChunkQueueTokenize(t *testing.T) {
	q := NewChunkQueue()
	q.Append([]byte("first\nsecond\nthird"))

	tok, ok := q.Tokenize('\n')
	require.True(t, ok)
	require.Equal(t, "first", string(tok))

	tok, ok = q.Tokenize('\n')
	require.True(t, ok)
	require.Equal(t, "second", string(tok))

	_, ok = q.Tokenize('\n')
	require.False(t, ok)
	require.Equal(t, "third", string(q.Pop(q.Size())))
}

func TestChunkQueueParseUint(t *testing.T) {
	q := NewChunkQueue()
	q.Append([]byte("12345rest"))

	v, consumed := q.ParseUint(0)
	require.Equal(t, uint64(12345), v)
	require.Equal(t, 5, consumed)
}
