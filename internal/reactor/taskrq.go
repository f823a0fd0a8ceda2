package reactor

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// VTask is one unit of deferred work the loop drains during its exec()
// pass. Run must not block: long work belongs in a callback scheduled
// back onto the loop in pieces, the same way the teacher never blocks
// inside handleCompletion.
type VTask struct {
	Run  func()
	next *VTask
}

// TaskRQ is an intrusive FIFO run-queue. It can be nested: a child
// queue's Add signals its parent exactly once on the empty-to-non-empty
// transition (spec's "new task signal"), so a parent loop blocked in
// Poll only wakes when there's genuinely new work, not on every Add.
type TaskRQ struct {
	mu     sync.Mutex
	head   *VTask
	tail   *VTask
	length int

	parent *TaskRQ
	// handoff bounds how many outstanding "queue went non-empty" signals
	// a parent will buffer from its children, so a burst of child queues
	// all gaining their first task doesn't pile up unbounded wakeups.
	handoff *semaphore.Weighted
	onWake  func()
}

// NewTaskRQ creates a standalone run-queue.
func NewTaskRQ() *TaskRQ {
	return &TaskRQ{}
}

// NewChildTaskRQ creates a run-queue nested under parent. onWake is
// invoked (at most once per empty-to-non-empty transition, and without
// holding any lock) when this queue gains work after being empty; the
// owning EventLoop uses it to call Notify on its cross-core wakeup
// entity.
func NewChildTaskRQ(parent *TaskRQ, onWake func()) *TaskRQ {
	return &TaskRQ{parent: parent, handoff: semaphore.NewWeighted(1), onWake: onWake}
}

// Len reports the current queue depth.
func (rq *TaskRQ) Len() int {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	return rq.length
}

// Add appends t to the tail of the queue.
func (rq *TaskRQ) Add(t *VTask) {
	rq.mu.Lock()
	wasEmpty := rq.head == nil
	t.next = nil
	if rq.tail == nil {
		rq.head = t
	} else {
		rq.tail.next = t
	}
	rq.tail = t
	rq.length++
	rq.mu.Unlock()

	if wasEmpty && rq.onWake != nil {
		if rq.handoff.TryAcquire(1) {
			rq.onWake()
		}
	}
}

// Fetch detaches and returns the head task, or nil if empty.
func (rq *TaskRQ) Fetch() *VTask {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	t := rq.head
	if t == nil {
		return nil
	}
	rq.head = t.next
	if rq.head == nil {
		rq.tail = nil
		if rq.handoff != nil {
			rq.handoff.Release(1)
		}
	}
	rq.length--
	t.next = nil
	return t
}

// Drain runs tasks until the queue empties or ctx's deadline (the
// loop's exec() quantum) expires, whichever comes first.
func (rq *TaskRQ) Drain(ctx context.Context) int {
	n := 0
	for {
		if ctx.Err() != nil {
			return n
		}
		t := rq.Fetch()
		if t == nil {
			return n
		}
		t.Run()
		n++
	}
}
