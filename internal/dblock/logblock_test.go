package dblock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogBlockInsertLookup(t *testing.T) {
	var b LogBlock
	b.Init(4096)

	require.NoError(t, b.Insert([]byte("a"), []byte("1")))
	require.NoError(t, b.Insert([]byte("b"), []byte("2")))

	v, ok := b.Lookup([]byte("a"))
	require.True(t, ok)
	require.Equal(t, "1", string(v))

	_, ok = b.Lookup([]byte("missing"))
	require.False(t, ok)
}

func TestLogBlockIterationOrder(t *testing.T) {
	var b LogBlock
	b.Init(4096)
	require.NoError(t, b.Append([]byte("first"), []byte("1")))
	require.NoError(t, b.Append([]byte("second"), []byte("2")))
	require.NoError(t, b.Prepend([]byte("zeroth"), []byte("0")))

	var order []string
	it := b.Seek(SeekBegin, nil)
	for it.Valid() {
		k, _, ok := b.SeekItem(it)
		require.True(t, ok)
		order = append(order, string(k))
		var more bool
		it, more = b.SeekNext(it)
		if !more {
			break
		}
	}
	require.Equal(t, []string{"zeroth", "first", "second"}, order)
}

func TestLogBlockPrependKeepsBucketChainsValid(t *testing.T) {
	var b LogBlock
	b.Init(4096)
	for i := 0; i < 20; i++ {
		require.NoError(t, b.Append([]byte{byte('a' + i)}, []byte{byte(i)}))
	}
	require.NoError(t, b.Prepend([]byte("new"), []byte("val")))

	for i := 0; i < 20; i++ {
		v, ok := b.Lookup([]byte{byte('a' + i)})
		require.True(t, ok, "key %c should still be found after Prepend", 'a'+i)
		require.Equal(t, []byte{byte(i)}, v)
	}
	v, ok := b.Lookup([]byte("new"))
	require.True(t, ok)
	require.Equal(t, "val", string(v))
}

func TestLogBlockOverwritePreservesPosition(t *testing.T) {
	var b LogBlock
	b.Init(4096)
	require.NoError(t, b.Append([]byte("a"), []byte("1")))
	require.NoError(t, b.Append([]byte("b"), []byte("2")))
	require.NoError(t, b.Insert([]byte("a"), []byte("updated")))

	first, _ := b.FirstKey()
	require.Equal(t, "a", string(first))
	v, _ := b.Lookup([]byte("a"))
	require.Equal(t, "updated", string(v))
	require.Equal(t, 2, b.Stats().KVCount)
}

func TestLogBlockHasSpace(t *testing.T) {
	var b LogBlock
	b.Init(32)
	err := b.Insert([]byte("way-too-long-key-for-this-block"), []byte("value"))
	require.ErrorIs(t, err, ErrBlockFull)
}
