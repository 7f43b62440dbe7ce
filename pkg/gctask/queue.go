package gctask

// SharedWorkQueue pairs a WorkList with the monitor that guards it.
// Every method here assumes the caller already holds the manager's
// monitor (see Monitor) — SharedWorkQueue performs no locking of its
// own, it only exists to keep the "this must run under the monitor"
// contract visible at the call sites inside TaskManager.
type SharedWorkQueue struct {
	list *WorkList
}

// newSharedWorkQueue wraps an empty WorkList.
func newSharedWorkQueue() *SharedWorkQueue {
	return &SharedWorkQueue{list: NewWorkList()}
}

func (q *SharedWorkQueue) isEmpty() bool { return q.list.IsEmpty() }
func (q *SharedWorkQueue) length() int   { return q.list.Len() }

func (q *SharedWorkQueue) enqueue(item *WorkItem) { q.list.Enqueue(item) }

func (q *SharedWorkQueue) enqueueList(other *WorkList) { q.list.EnqueueList(other) }

func (q *SharedWorkQueue) dequeue() (*WorkItem, error) { return q.list.Dequeue() }

func (q *SharedWorkQueue) dequeueWithAffinity(w int) (*WorkItem, error) {
	return q.list.DequeueWithAffinity(w)
}
