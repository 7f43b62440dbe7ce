package gctask

import "sync/atomic"

// ThreadFactory is the only integration point TaskManager needs from the
// surrounding runtime: something that can start a worker that will call
// GetTask/NoteCompletion/ShouldRelease/NoteRelease in a loop. Worker
// creation, CPU-affinity binding and OS-thread integration are out of
// scope for this package (spec.md section 1) — ThreadFactory is the
// interface a caller's collaborator implements; package gcthread ships
// a ready-to-use goroutine-backed one.
type ThreadFactory interface {
	// StartWorker starts worker id against manager m. It is called once
	// per worker, both at construction (up to the initial active count)
	// and whenever SetActiveWorkers grows created workers.
	StartWorker(m *TaskManager, id int) error
}

// AffinityDistributor assigns a worker-affinity hint to a newly created
// work item when Config.BindThreadsToCPUs is true. When it is false,
// every item gets NoAffinity; when it is true and no AffinityDistributor
// is supplied, New installs a round-robin distributor.
//
// This mirrors spec.md section 6's bind_threads_to_cpus flag: binding
// worker threads to CPUs is itself out of scope (an OS-integration
// concern left to the thread factory); what the core needs is just a
// source of affinity hints for newly submitted items.
type AffinityDistributor interface {
	Assign(workers int) int
}

// roundRobinDistributor is the default AffinityDistributor: it assigns
// workers 0..n-1 in rotation across successive calls.
type roundRobinDistributor struct {
	next atomic.Uint32
}

// NewRoundRobinDistributor returns an AffinityDistributor that cycles
// through worker indices in order, used by Config.BindThreadsToCPUs
// when the caller supplies no distributor of its own.
func NewRoundRobinDistributor() AffinityDistributor {
	return &roundRobinDistributor{}
}

func (d *roundRobinDistributor) Assign(workers int) int {
	if workers <= 0 {
		return NoAffinity
	}
	n := d.next.Add(1) - 1
	return int(n % uint32(workers))
}

// Config configures a TaskManager. It is a constructor argument, not
// global state, matching the teacher's FixedWorkerPoolConfig /
// DynamicWorkerPoolConfig / PriorityWorkerPoolConfig pattern.
type Config struct {
	// ParallelGCThreads is the fixed maximum worker count.
	ParallelGCThreads int

	// BindThreadsToCPUs selects the OS affinity distributor; when false
	// every worker uses the NoAffinity sentinel.
	BindThreadsToCPUs bool

	// AffinityDistributor supplies affinity hints for newly submitted
	// items when BindThreadsToCPUs is true. Defaults to a round-robin
	// distributor if nil.
	AffinityDistributor AffinityDistributor

	// UseDynamicWorkerCount, when true, starts active_workers at 1 and
	// expects SetActiveWorkers to grow it later; when false,
	// active_workers starts at ParallelGCThreads.
	UseDynamicWorkerCount bool

	// UseTaskAffinity selects affinity-biased dequeue in GetTask; when
	// false, GetTask always does a plain FIFO dequeue.
	UseTaskAffinity bool

	// ThreadFactory starts each worker. Required.
	ThreadFactory ThreadFactory

	// Clock is used only for dispatch-latency observability
	// (WorkItem.enqueuedAt / Stats.AverageWait); it does not gate any
	// blocking operation — spec.md section 5 imposes no timeouts.
	// Defaults to a RealClock.
	Clock Clock
}

// DefaultConfig returns a Config for a fixed-size, non-affinity pool of
// n workers with the given ThreadFactory.
func DefaultConfig(n int, tf ThreadFactory) *Config {
	return &Config{
		ParallelGCThreads: n,
		ThreadFactory:     tf,
		Clock:             NewRealClock(),
	}
}

func (c *Config) validate() error {
	if c.ParallelGCThreads <= 0 {
		return ErrInvalidWorkerCount
	}
	if c.ThreadFactory == nil {
		return ErrNilThreadFactory
	}
	return nil
}
