package gctask

import (
	"fmt"
	"sync/atomic"
	"time"
)

// sentinelWorker marks "no worker" — used for blockingWorker when the
// queue is unblocked.
const sentinelWorker = -1

// TaskManager owns the SharedWorkQueue, the worker/task counters, the
// blocking-worker identity, the per-worker resource-release flags, the
// singleton Noop and the idle-parking state. It is the Go realization of
// spec.md section 3's TaskManager state and section 4's submission /
// worker / dynamic-adjustment / barrier / idle APIs.
type TaskManager struct {
	monitor     *Monitor
	queue       *SharedWorkQueue
	monitorPool *MonitorPool

	cfg   *Config
	clock Clock

	workers        int // immutable max, spec.md's ParallelGCThreads
	createdWorkers int
	activeWorkers  int
	idleWorkers    int
	busyWorkers    int
	blockingWorker int

	deliveredTasks int64
	completedTasks int64
	barriers       int64
	emptiedQueue   int64

	totalWaitNanos int64
	waitSamples    int64

	// resourceFlag is single-writer per cell (the manager writes true
	// under the monitor in ReleaseAllResources; the owning worker writes
	// false, unlocked, in NoteRelease) so plain atomics avoid tearing
	// without needing the monitor for every read.
	resourceFlag []atomic.Bool

	noop *WorkItem

	// idleShouldWait backs what spec.md calls the idle_waitflag. As in
	// the original GCTaskManager (IdleGCTask::do_it,
	// release_idle_workers), idle workers wait and are notified on the
	// manager's own monitor rather than a private one — see waitflag.go.
	idleShouldWait bool
}

// New constructs a TaskManager and starts its initial workers via
// cfg.ThreadFactory. Dynamic pools (Config.UseDynamicWorkerCount) start
// with a single active worker; fixed pools start with
// Config.ParallelGCThreads active workers — matching
// GCTaskManager::initialize's UseDynamicNumberOfGCThreads branch.
func New(cfg *Config) (*TaskManager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = NewRealClock()
	}

	if cfg.BindThreadsToCPUs && cfg.AffinityDistributor == nil {
		cfg.AffinityDistributor = NewRoundRobinDistributor()
	}

	active := cfg.ParallelGCThreads
	if cfg.UseDynamicWorkerCount {
		active = 1
	}

	m := &TaskManager{
		monitor:        newMonitor(),
		queue:          newSharedWorkQueue(),
		monitorPool:    NewMonitorPool(),
		cfg:            cfg,
		clock:          clock,
		workers:        cfg.ParallelGCThreads,
		activeWorkers:  active,
		blockingWorker: sentinelWorker,
		resourceFlag:   make([]atomic.Bool, cfg.ParallelGCThreads),
		noop:           newNoop(),
	}

	if err := m.addWorkersLocked(active); err != nil {
		return nil, err
	}
	return m, nil
}

// addWorkersLocked starts new workers, up to target, via the thread
// factory. Called both from New and from SetActiveWorkers when growing.
func (m *TaskManager) addWorkersLocked(target int) error {
	for m.createdWorkers < target && m.createdWorkers < m.workers {
		id := m.createdWorkers
		if err := m.cfg.ThreadFactory.StartWorker(m, id); err != nil {
			return fmt.Errorf("gctask: starting worker %d: %w", id, err)
		}
		m.createdWorkers++
	}
	return nil
}

// Workers returns the fixed maximum worker count.
func (m *TaskManager) Workers() int { return m.workers }

// Affinity returns the next worker-affinity hint for a newly built item,
// drawn from Config.AffinityDistributor when Config.BindThreadsToCPUs is
// set, or NoAffinity otherwise. Callers building Ordinary items with
// NewOrdinaryTask use this instead of hand-picking an affinity when they
// want the OS-affinity-distribution policy spec.md section 6 describes.
func (m *TaskManager) Affinity() int {
	if !m.cfg.BindThreadsToCPUs {
		return NoAffinity
	}
	return m.cfg.AffinityDistributor.Assign(m.workers)
}

func (m *TaskManager) checkWorkerIndex(w int) {
	assertf(w >= 0 && w < m.workers, "worker index %d out of range [0,%d)", w, m.workers)
}

// --- submission API (spec.md section 4.3) ---

// Submit enqueues a single item and wakes every waiter.
func (m *TaskManager) Submit(item *WorkItem) {
	m.monitor.Lock()
	item.enqueuedAt = m.clock.Now()
	m.queue.enqueue(item)
	m.monitor.Broadcast()
	m.monitor.Unlock()
}

// SubmitList splices list's items onto the queue and wakes every
// waiter. Broadcasting (rather than a single-wake) matters here: more
// than one item may have just been enqueued, and a barrier item must
// not be starved by a single-wake policy (spec.md section 4.3).
func (m *TaskManager) SubmitList(list *WorkList) {
	m.monitor.Lock()
	now := m.clock.Now()
	for item := list.headRemove; item != nil; item = item.newer {
		item.enqueuedAt = now
	}
	m.queue.enqueueList(list)
	m.monitor.Broadcast()
	m.monitor.Unlock()
}

// SubmitAndWait appends a fresh Barrier item to list, submits list, and
// blocks until every item submitted before the barrier — including the
// barrier itself — has been dispatched and completed. It is the Go
// realization of spec.md section 4.3's submit_and_wait / the original's
// execute_and_wait.
func (m *TaskManager) SubmitAndWait(list *WorkList) {
	wf := NewWaitFlag(m.monitorPool)
	barrier := newBarrierTask(wf)
	list.Enqueue(barrier)

	// The original inserts an explicit store-store fence here
	// (OrderAccess::storestore()) between publishing the barrier's
	// WaitFlag pointer and making the item visible via add_list's lock
	// acquisition. In Go the SubmitList below acquires m.monitor before
	// any worker's GetTask can observe the item, and that lock
	// acquisition is itself the necessary release/acquire pairing — no
	// additional fence is needed.
	m.SubmitList(list)

	wf.WaitFor(false)
	wf.Destroy()
}

// --- worker API (spec.md section 4.4) ---

// GetTask is called by worker w repeatedly. It blocks while the queue
// is BLOCKED by a barrier, or while the queue is empty and w has no
// pending resource-release request, then returns the next item (or the
// Noop singleton if the queue was empty on wake).
func (m *TaskManager) GetTask(w int) *WorkItem {
	m.checkWorkerIndex(w)

	m.monitor.Lock()
	defer m.monitor.Unlock()

	for m.blocked() || (m.queue.isEmpty() && !m.shouldReleaseLocked(w)) {
		m.monitor.Wait()
	}

	var result *WorkItem
	if !m.queue.isEmpty() {
		var err error
		if m.cfg.UseTaskAffinity {
			result, err = m.queue.dequeueWithAffinity(w)
		} else {
			result, err = m.queue.dequeue()
		}
		assertf(err == nil, "dequeue on non-empty queue failed: %v", err)

		if result.kind == Barrier {
			m.blockingWorker = w
		}
	} else {
		result = m.noop
	}

	if result.kind != Idle {
		m.busyWorkers++
		// Barrier items are tallied in barriers, not as delivered tasks.
		if result.kind != Barrier {
			m.deliveredTasks++
		}

		if !result.enqueuedAt.IsZero() {
			m.totalWaitNanos += int64(m.clock.Since(result.enqueuedAt))
			m.waitSamples++
		}
	}

	return result
}

// NoteCompletion is called by worker w after executing a non-Idle item
// returned from GetTask.
func (m *TaskManager) NoteCompletion(w int) {
	m.checkWorkerIndex(w)

	m.monitor.Lock()
	defer m.monitor.Unlock()

	if m.blockingWorker == w {
		m.blockingWorker = sentinelWorker
		m.barriers++
	} else {
		m.completedTasks++
	}

	assertf(m.busyWorkers > 0, "note_completion: busy_workers underflow")
	m.busyWorkers--

	if m.busyWorkers == 0 && m.queue.isEmpty() {
		m.emptiedQueue++
	}

	m.monitor.Broadcast()
}

// ShouldRelease is an unlocked read of w's resource-release flag.
func (m *TaskManager) ShouldRelease(w int) bool {
	m.checkWorkerIndex(w)
	return m.resourceFlag[w].Load()
}

func (m *TaskManager) shouldReleaseLocked(w int) bool {
	return m.resourceFlag[w].Load()
}

// NoteRelease is an unlocked write clearing w's resource-release flag,
// called by w after it has acted on the request.
func (m *TaskManager) NoteRelease(w int) {
	m.checkWorkerIndex(w)
	m.resourceFlag[w].Store(false)
}

// blocked reports whether a Barrier item is currently executing
// (blockingWorker != sentinel). Caller must hold the monitor.
func (m *TaskManager) blocked() bool {
	return m.blockingWorker != sentinelWorker
}

// --- barrier execution (spec.md section 4.6) ---

// RunBarrier executes the body of a dequeued Barrier item on behalf of
// the calling worker: wait until it is the only busy worker, then notify the
// barrier's submitter. Called by the worker loop (see package gcthread)
// between GetTask and NoteCompletion for any item whose Kind is Barrier.
func (m *TaskManager) RunBarrier(item *WorkItem) {
	assertf(item.kind == Barrier, "RunBarrier called on a %s item", item.kind)

	m.monitor.Lock()
	for m.busyWorkers > 1 {
		m.monitor.Wait()
	}
	m.monitor.Unlock()

	item.barrier.Notify()
}

// --- idle execution (spec.md section 4.7) ---

// RunIdle executes the body of a dequeued Idle item on behalf of the
// calling worker: park on the manager's monitor until released, then decrement
// idleWorkers. NoteCompletion must NOT be called for Idle items.
func (m *TaskManager) RunIdle() {
	m.monitor.Lock()
	m.monitor.Broadcast()
	for m.idleShouldWait {
		m.monitor.Wait()
	}
	m.idleWorkers--
	m.monitor.Unlock()
}

// --- dynamic active-worker adjustment (spec.md section 4.5) ---

// SetActiveWorkers adjusts the target concurrency level. Growing starts
// additional workers (up to Workers()); shrinking parks the surplus on
// Idle tasks.
func (m *TaskManager) SetActiveWorkers(n int) {
	assertf(n >= 1, "active workers must be >= 1, got %d", n)

	m.monitor.Lock()
	grow := n > m.activeWorkers && m.createdWorkers < m.workers
	m.monitor.Unlock()

	if grow {
		target := n
		if target > m.workers {
			target = m.workers
		}

		// StartWorker is expected to spawn its worker loop asynchronously
		// (e.g. as a goroutine) rather than calling back into the manager
		// synchronously, so holding the monitor across addWorkersLocked
		// here is safe.
		m.monitor.Lock()
		_ = m.addWorkersLocked(target)
		m.activeWorkers = target
		m.monitor.Unlock()
		return
	}

	m.parkSurplusWorkers(n)
}

// parkSurplusWorkers computes surplus = created - active - idle; if
// positive it fabricates that many Idle items, increments idleWorkers
// accordingly, and enqueues the batch. If surplus is negative — more
// idle workers than we'd need to park to reach n — it is clamped to
// zero and activeWorkers is reduced to active + surplus, since the
// already-parked workers cannot be reclaimed until the next
// ReleaseIdleWorkers (spec.md section 4.5).
func (m *TaskManager) parkSurplusWorkers(n int) {
	m.monitor.Lock()

	m.activeWorkers = n
	m.idleShouldWait = true

	surplus := m.createdWorkers - m.activeWorkers - m.idleWorkers
	if surplus < 0 {
		m.activeWorkers += surplus
		surplus = 0
	}

	list := NewWorkList()
	for i := 0; i < surplus; i++ {
		list.Enqueue(newIdleTask())
		m.idleWorkers++
	}

	m.queue.enqueueList(list)
	m.monitor.Broadcast()
	m.monitor.Unlock()
}

// ReleaseIdleWorkers wakes every worker parked on an Idle task.
func (m *TaskManager) ReleaseIdleWorkers() {
	m.monitor.Lock()
	m.idleShouldWait = false
	m.monitor.Broadcast()
	m.monitor.Unlock()
}

// --- resource release (spec.md section 4.4, 6) ---

// ReleaseAllResources sets every created worker's resource flag to
// true. Per spec.md section 9's open question, this is intentionally
// non-atomic across workers; a caller needing an atomic fence should
// wrap the release in a barrier submission (SubmitAndWait).
func (m *TaskManager) ReleaseAllResources() {
	m.monitor.Lock()
	for i := 0; i < m.createdWorkers; i++ {
		m.resourceFlag[i].Store(true)
	}
	m.monitor.Broadcast()
	m.monitor.Unlock()
}

// --- observability & teardown ---

// Snapshot returns a point-in-time copy of the manager's counters.
func (m *TaskManager) Snapshot() Stats {
	m.monitor.Lock()
	defer m.monitor.Unlock()

	s := Stats{
		Workers:        m.workers,
		CreatedWorkers: m.createdWorkers,
		ActiveWorkers:  m.activeWorkers,
		IdleWorkers:    m.idleWorkers,
		BusyWorkers:    m.busyWorkers,
		QueueLength:    m.queue.length(),
		Blocked:        m.blocked(),
		DeliveredTasks: m.deliveredTasks,
		CompletedTasks: m.completedTasks,
		Barriers:       m.barriers,
		EmptiedQueue:   m.emptiedQueue,
	}
	if m.waitSamples > 0 {
		s.AverageWait = time.Duration(m.totalWaitNanos / m.waitSamples)
	}
	return s
}

// Close tears the manager down. Per spec.md section 7's NotIdleOnDestruct,
// destroying a manager with busy workers or a non-empty queue is a
// programming error and aborts — callers must drain the queue (e.g. via
// a final SubmitAndWait) and let all workers finish before calling Close.
func (m *TaskManager) Close() {
	m.monitor.Lock()
	busy, empty := m.busyWorkers, m.queue.isEmpty()
	m.monitor.Unlock()

	assertf(busy == 0, "gctask: NotIdleOnDestruct: %d busy workers", busy)
	assertf(empty, "gctask: NotIdleOnDestruct: queue is not empty")
}
