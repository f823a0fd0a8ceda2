package collections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type cacheEntry struct {
	link ListNode
	key  int
}

func TestListPushOrder(t *testing.T) {
	var l List
	a := &cacheEntry{key: 1}
	b := &cacheEntry{key: 2}
	c := &cacheEntry{key: 3}

	a.link.Value, b.link.Value, c.link.Value = a, b, c

	l.PushBack(&a.link)
	l.PushBack(&b.link)
	l.PushFront(&c.link)

	require.Equal(t, 3, l.Len())

	order := []int{}
	for n := l.Front(); n != nil; n = n.Next() {
		order = append(order, entryOf(n).key)
	}
	require.Equal(t, []int{3, 1, 2}, order)
}

func entryOf(n *ListNode) *cacheEntry {
	return n.Value.(*cacheEntry)
}

func TestListRemoveAndMoveToBack(t *testing.T) {
	var l List
	a := &cacheEntry{key: 1}
	b := &cacheEntry{key: 2}
	c := &cacheEntry{key: 3}
	a.link.Value, b.link.Value, c.link.Value = a, b, c
	l.PushBack(&a.link)
	l.PushBack(&b.link)
	l.PushBack(&c.link)

	l.Remove(&b.link)
	require.Equal(t, 2, l.Len())

	l.MoveToBack(&a.link)
	order := []int{}
	for n := l.Front(); n != nil; n = n.Next() {
		order = append(order, entryOf(n).key)
	}
	require.Equal(t, []int{3, 1}, order)
}
