package collections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSkiplistInsertFindDelete(t *testing.T) {
	sl := NewSkiplist[int, string](intCmp)
	sl.Insert(10, "ten")
	sl.Insert(5, "five")
	sl.Insert(20, "twenty")
	sl.Insert(10, "ten-again")

	require.Equal(t, 3, sl.Len())

	v, ok := sl.Find(10)
	require.True(t, ok)
	require.Equal(t, "ten-again", v)

	require.True(t, sl.Delete(5))
	require.False(t, sl.Delete(5))
	require.Equal(t, 2, sl.Len())
}

func TestSkiplistRangeIsSorted(t *testing.T) {
	sl := NewSkiplist[int, int](intCmp)
	for _, v := range []int{50, 10, 30, 20, 40} {
		sl.Insert(v, v)
	}

	var seen []int
	sl.Range(func(k, v int) bool {
		seen = append(seen, k)
		return true
	})

	require.Equal(t, []int{10, 20, 30, 40, 50}, seen)
}
