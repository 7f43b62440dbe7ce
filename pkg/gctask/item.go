package gctask

import (
	"context"
	"time"
)

// Kind tags the variant of a WorkItem.
type Kind int

const (
	// Ordinary is an opaque unit of GC work; its execution body is
	// supplied by the caller and is never inspected by the manager.
	Ordinary Kind = iota
	// Noop is returned to a worker that wakes with nothing to do; it is
	// never linked into a WorkList.
	Noop
	// Idle parks its worker on the manager's own monitor until idle
	// workers are released.
	Idle
	// Barrier blocks the queue until every task dispatched before it has
	// completed, then signals its submitter.
	Barrier
)

func (k Kind) String() string {
	switch k {
	case Ordinary:
		return "ordinary"
	case Noop:
		return "noop"
	case Idle:
		return "idle"
	case Barrier:
		return "barrier"
	default:
		return "unknown"
	}
}

// NoAffinity is the sentinel affinity meaning "no worker preference."
const NoAffinity = -1

// WorkItem is the base record carried through the WorkList. It is
// heap-owned and, per spec.md section 3, belongs to at most one list at
// a time: when unlinked, older and newer are both nil.
type WorkItem struct {
	kind     Kind
	gcID     uint64
	affinity int

	older *WorkItem
	newer *WorkItem

	// inList is true while the item is attached to a WorkList. older and
	// newer alone cannot distinguish "unlinked" from "the sole item in a
	// one-element list" (both are nil in either case), so WorkList sets
	// this flag explicitly on enqueue/dequeue/remove.
	inList bool

	// barrier is only set on a Barrier item.
	barrier *WaitFlag

	// body is the opaque execution callback for an Ordinary item, set by
	// NewOrdinaryTask. The manager never inspects it; only a worker loop
	// (e.g. package gcthread) calls it, after GetTask and before
	// NoteCompletion.
	body func(ctx context.Context) error

	// enqueuedAt is stamped by TaskManager.Submit/SubmitList for dispatch
	// latency observability (section 2.4 of SPEC_FULL.md); it is the Go
	// analogue of the teacher's PriorityTask.SubmitTime.
	enqueuedAt time.Time
}

// NewOrdinaryTask creates an Ordinary work item for GC batch gcID, with
// the given worker affinity (use NoAffinity for no preference) and
// execution body fn. fn must not be nil.
func NewOrdinaryTask(gcID uint64, affinity int, fn func(ctx context.Context) error) *WorkItem {
	assertf(fn != nil, "ordinary task body must not be nil")
	return &WorkItem{kind: Ordinary, gcID: gcID, affinity: affinity, body: fn}
}

// newNoop returns a freshly-constructed Noop; TaskManager keeps exactly
// one of these as a singleton and hands it out directly from GetTask
// without ever linking it into a list.
func newNoop() *WorkItem {
	return &WorkItem{kind: Noop, affinity: NoAffinity}
}

// newIdleTask creates an Idle item. Idle items carry no payload of their
// own; all of them park on the manager's monitor, guarded by its single
// idleShouldWait bit.
func newIdleTask() *WorkItem {
	return &WorkItem{kind: Idle, affinity: NoAffinity}
}

// newBarrierTask creates a Barrier item paired with a private WaitFlag
// drawn from the manager's MonitorPool.
func newBarrierTask(wf *WaitFlag) *WorkItem {
	return &WorkItem{kind: Barrier, affinity: NoAffinity, barrier: wf}
}

// Kind returns the item's variant tag.
func (w *WorkItem) Kind() Kind { return w.kind }

// GCID returns the opaque batch identifier.
func (w *WorkItem) GCID() uint64 { return w.gcID }

// Affinity returns the preferred worker index, or NoAffinity.
func (w *WorkItem) Affinity() int { return w.affinity }

// linked reports whether the item is currently attached to a WorkList.
func (w *WorkItem) linked() bool {
	return w.inList
}

// Execute runs an Ordinary item's body. Calling it on any other Kind is
// a programming error and aborts.
func (w *WorkItem) Execute(ctx context.Context) error {
	assertf(w.kind == Ordinary, "Execute called on a %s item", w.kind)
	return w.body(ctx)
}
