package gctask

// WorkList is an unsynchronized intrusive doubly-linked list of
// WorkItems. headRemove is the oldest end (dequeued first); headInsert
// is the youngest end (new items attach here). Callers are responsible
// for holding whatever lock guards the list — WorkList itself performs
// no synchronization, matching spec.md section 4.1.
type WorkList struct {
	headRemove *WorkItem
	headInsert *WorkItem
	length     int
}

// NewWorkList returns an empty WorkList.
func NewWorkList() *WorkList { return &WorkList{} }

// Len returns the number of items currently linked.
func (l *WorkList) Len() int { return l.length }

// IsEmpty reports whether the list holds no items.
func (l *WorkList) IsEmpty() bool { return l.length == 0 }

// Enqueue attaches item as the new insert end. item must not already be
// linked into a list; violating this is a DoubleLink programming error
// and aborts, per spec.md section 7.
func (l *WorkList) Enqueue(item *WorkItem) {
	assertf(!item.linked(), "enqueue of already-linked item")

	item.older = l.headInsert
	item.newer = nil
	item.inList = true

	if l.headInsert != nil {
		l.headInsert.newer = item
	}
	l.headInsert = item
	if l.headRemove == nil {
		l.headRemove = item
	}
	l.length++
}

// EnqueueList splices every item of other onto the insert end in FIFO
// order and empties other. Ownership of the spliced items transfers to
// l. A no-op if other is empty.
func (l *WorkList) EnqueueList(other *WorkList) {
	if other.IsEmpty() {
		return
	}

	if l.headInsert != nil {
		l.headInsert.newer = other.headRemove
		other.headRemove.older = l.headInsert
	} else {
		l.headRemove = other.headRemove
	}
	l.headInsert = other.headInsert
	l.length += other.length

	other.headRemove = nil
	other.headInsert = nil
	other.length = 0
}

// Dequeue removes and returns the remove-end item. On an empty list it
// returns errQueueEmpty; GetTask only dequeues after checking that the
// queue is non-empty, so that error never reaches GetTask's callers.
func (l *WorkList) Dequeue() (*WorkItem, error) {
	if l.headRemove == nil {
		return nil, errQueueEmpty
	}
	return l.remove(l.headRemove), nil
}

// DequeueWithAffinity scans from the remove end toward the insert end,
// returning the first item whose affinity equals w. The scan halts at —
// and never crosses — the first Barrier encountered, because honouring
// affinity past a barrier would violate the batch-completion fence the
// barrier enforces. If no match is found before that halt (or before
// the insert end), it falls back to plain Dequeue.
//
// The tie-break among equally-eligible candidates is "first match
// scanning from the remove end," matching the original's dequeue(uint)
// traversal order (see DESIGN.md, Open Questions).
func (l *WorkList) DequeueWithAffinity(w int) (*WorkItem, error) {
	for item := l.headRemove; item != nil; item = item.newer {
		if item.kind == Barrier {
			break
		}
		if item.affinity == w {
			return l.remove(item), nil
		}
	}
	return l.Dequeue()
}

// Remove unlinks a specific item from the list, fixing up its
// neighbours and the list endpoints.
func (l *WorkList) Remove(item *WorkItem) *WorkItem {
	assertf(item.linked(), "remove of item not linked into this list")
	return l.remove(item)
}

func (l *WorkList) remove(item *WorkItem) *WorkItem {
	older, newer := item.older, item.newer

	if older != nil {
		older.newer = newer
	} else {
		l.headRemove = newer
	}
	if newer != nil {
		newer.older = older
	} else {
		l.headInsert = older
	}

	item.older = nil
	item.newer = nil
	item.inList = false
	l.length--
	return item
}
