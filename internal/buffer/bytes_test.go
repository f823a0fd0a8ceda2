package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceCompareAndEqual(t *testing.T) {
	a := NewSlice([]byte("abc"))
	b := NewSlice([]byte("abd"))
	c := NewSlice([]byte("abc"))

	require.True(t, a.Compare(b) < 0)
	require.True(t, a.Equal(c))
	require.False(t, a.Equal(b))
	require.Equal(t, 3, a.Len())
}

func TestBytesRefcount(t *testing.T) {
	b := NewBytes([]byte("payload"))
	clone := b.Clone()

	require.Equal(t, "payload", string(b.Slice().Bytes()))
	require.Equal(t, int32(1), b.Release())
	require.Equal(t, int32(0), clone.Release())
}
