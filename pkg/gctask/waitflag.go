package gctask

// WaitFlag is a one-bit signalling primitive with its own borrowed
// Monitor. Each submit_and_wait call hands its Barrier item a fresh
// WaitFlag from the manager's MonitorPool, so a barrier's
// wait/notify never broadcasts onto the manager's main monitor.
//
// Idle parking does not use a WaitFlag: the original gcTaskManager.cpp
// (IdleGCTask::do_it, GCTaskManager::release_idle_workers) waits and
// notifies directly on the manager's own monitor, treating the shared
// "should idle workers wait" bit as a plain field guarded by that
// monitor rather than by a monitor of its own — TaskManager mirrors
// that with an unexported bool (see manager.go).
type WaitFlag struct {
	pool       *MonitorPool
	monitor    *Monitor
	shouldWait bool
}

// NewWaitFlag reserves a Monitor from pool and returns a WaitFlag whose
// shouldWait starts true (callers must notify before any WaitFor
// returns).
func NewWaitFlag(pool *MonitorPool) *WaitFlag {
	return &WaitFlag{
		pool:       pool,
		monitor:    pool.Reserve(),
		shouldWait: true,
	}
}

// WaitFor blocks until Notify clears shouldWait. The flag is checked
// under the monitor on every wake, so a Notify that lands between the
// check and the wait can never be lost. If reset is true, shouldWait is
// set back to true before returning, letting a caller that intends to
// keep the WaitFlag (rather than Destroy it) reuse it for a later round.
func (f *WaitFlag) WaitFor(reset bool) {
	f.monitor.Lock()
	for f.shouldWait {
		f.monitor.Wait()
	}
	if reset {
		f.shouldWait = true
	}
	f.monitor.Unlock()
}

// Notify clears shouldWait and wakes every waiter.
func (f *WaitFlag) Notify() {
	f.monitor.Lock()
	f.shouldWait = false
	f.monitor.Broadcast()
	f.monitor.Unlock()
}

// Destroy returns the borrowed Monitor to the pool. Callers must not use
// the WaitFlag after calling Destroy.
func (f *WaitFlag) Destroy() {
	f.pool.Release(f.monitor)
	f.monitor = nil
}
