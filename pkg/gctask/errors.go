package gctask

import (
	"errors"
	"fmt"
)

// errQueueEmpty is returned internally by WorkList.Dequeue; it never
// escapes TaskManager.GetTask, which substitutes the Noop singleton.
var errQueueEmpty = errors.New("gctask: queue is empty")

// ErrNilThreadFactory is returned by New when Config.ThreadFactory is nil.
var ErrNilThreadFactory = errors.New("gctask: config.ThreadFactory must not be nil")

// ErrInvalidWorkerCount is returned by New/validate when
// Config.ParallelGCThreads is not positive.
var ErrInvalidWorkerCount = errors.New("gctask: parallel gc threads must be positive")

// assertf panics with a formatted message. The TaskManager treats the
// conditions listed in spec.md section 7 (double-linking an enqueued
// item, an out-of-range worker index, destructing a manager with a
// non-empty queue or busy workers) as programming errors, not
// recoverable failures, so they abort rather than return an error.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("gctask: "+format, args...))
	}
}
