package gctask

import "time"

// Stats is a point-in-time snapshot of TaskManager's counters, taken
// under the monitor. It is the Go analogue of the teacher's
// WorkerPoolStats / PriorityStats value types returned from Stats().
type Stats struct {
	Workers       int
	CreatedWorkers int
	ActiveWorkers int
	IdleWorkers   int
	BusyWorkers   int

	QueueLength int
	Blocked     bool

	DeliveredTasks int64
	CompletedTasks int64
	Barriers       int64
	EmptiedQueue   int64

	// AverageWait is the mean time a dispatched item spent in the queue
	// between Submit and GetTask, sampled over the lifetime of the
	// manager. Zero if no item has been dispatched yet.
	AverageWait time.Duration
}
