package collections

// ListNode is an intrusive doubly-linked list link, meant to be embedded in
// a caller's struct rather than wrapping a value, mirroring the embedded
// list_node_t pattern plugin objects use to chain themselves onto a cache's
// LRU without a second allocation.
type ListNode struct {
	prev, next *ListNode
	list       *List
	Value      any
}

// List is a circular sentinel-based intrusive list. The zero value is an
// empty list.
type List struct {
	sentinel ListNode
	size     int
}

// Init must be called once before use (or rely on the zero value, which is
// already a valid empty list via lazy init in PushBack/PushFront).
func (l *List) Init() {
	l.sentinel.prev = &l.sentinel
	l.sentinel.next = &l.sentinel
	l.size = 0
}

func (l *List) ensureInit() {
	if l.sentinel.next == nil {
		l.Init()
	}
}

// Len returns the number of linked nodes.
func (l *List) Len() int { return l.size }

// PushBack links n at the tail of the list.
func (l *List) PushBack(n *ListNode) {
	l.ensureInit()
	n.prev = l.sentinel.prev
	n.next = &l.sentinel
	l.sentinel.prev.next = n
	l.sentinel.prev = n
	n.list = l
	l.size++
}

// PushFront links n at the head of the list.
func (l *List) PushFront(n *ListNode) {
	l.ensureInit()
	n.next = l.sentinel.next
	n.prev = &l.sentinel
	l.sentinel.next.prev = n
	l.sentinel.next = n
	n.list = l
	l.size++
}

// Remove unlinks n from whichever list it belongs to. It is a no-op if n is
// not currently linked.
func (l *List) Remove(n *ListNode) {
	if n.list != l {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next, n.list = nil, nil, nil
	l.size--
}

// MoveToBack relinks an already-linked node to the tail, used to implement
// LRU touch-on-access without reallocating.
func (l *List) MoveToBack(n *ListNode) {
	l.Remove(n)
	l.PushBack(n)
}

// Front returns the head node, or nil if the list is empty.
func (l *List) Front() *ListNode {
	l.ensureInit()
	if l.sentinel.next == &l.sentinel {
		return nil
	}
	return l.sentinel.next
}

// Back returns the tail node, or nil if the list is empty.
func (l *List) Back() *ListNode {
	l.ensureInit()
	if l.sentinel.prev == &l.sentinel {
		return nil
	}
	return l.sentinel.prev
}

// Next returns the node following n, or nil at the end of the list.
func (n *ListNode) Next() *ListNode {
	if n.next == nil || n.list == nil || n.next == &n.list.sentinel {
		return nil
	}
	return n.next
}

// Prev returns the node preceding n, or nil at the start of the list.
func (n *ListNode) Prev() *ListNode {
	if n.prev == nil || n.list == nil || n.prev == &n.list.sentinel {
		return nil
	}
	return n.prev
}
