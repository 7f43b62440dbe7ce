// Command gcdemo exercises a TaskManager end to end against the default
// goroutine-backed ThreadFactory, adapted from the teacher's
// examples/worker and examples/dynamic-worker mains.
package main

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/ziyiluo/gctaskmanager/pkg/gcthread"
	"github.com/ziyiluo/gctaskmanager/pkg/gctask"
)

func main() {
	fmt.Println("=== GC Task Manager Demo ===")

	factory := gcthread.New(context.Background(), func(workerID int, gcID uint64, err error) {
		log.Printf("worker %d: task %d failed: %v", workerID, gcID, err)
	})

	cfg := gctask.DefaultConfig(4, factory)
	cfg.UseTaskAffinity = true
	cfg.BindThreadsToCPUs = true

	manager, err := gctask.New(cfg)
	if err != nil {
		log.Fatalf("failed to create task manager: %v", err)
	}

	fmt.Println("\n--- Example 1: Basic submission ---")
	basicSubmission(manager)

	fmt.Println("\n--- Example 2: Barrier (submit_and_wait) ---")
	barrierBatch(manager)

	fmt.Println("\n--- Example 3: Dynamic worker count ---")
	dynamicWorkerCount(manager)

	printStats(manager)

	drainQueue(manager)
	factory.Stop()
	manager.Close()
}

func basicSubmission(m *gctask.TaskManager) {
	var completed int64

	list := gctask.NewWorkList()
	for i := 0; i < 5; i++ {
		taskID := i
		affinity := m.Affinity()
		list.Enqueue(gctask.NewOrdinaryTask(uint64(taskID), affinity, func(ctx context.Context) error {
			fmt.Printf("executing task %d (affinity %d)\n", taskID, affinity)
			atomic.AddInt64(&completed, 1)
			return nil
		}))
	}

	m.SubmitAndWait(list)
	fmt.Printf("basic submission: %d tasks completed\n", atomic.LoadInt64(&completed))
}

func barrierBatch(m *gctask.TaskManager) {
	before := gctask.NewWorkList()
	before.Enqueue(gctask.NewOrdinaryTask(100, gctask.NoAffinity, func(ctx context.Context) error {
		fmt.Println("running before the barrier")
		return nil
	}))
	m.SubmitList(before)

	after := gctask.NewWorkList()
	after.Enqueue(gctask.NewOrdinaryTask(101, gctask.NoAffinity, func(ctx context.Context) error {
		fmt.Println("running after the barrier")
		return nil
	}))

	m.SubmitAndWait(after)
	fmt.Println("barrier batch complete; submitter unblocked")
}

func dynamicWorkerCount(m *gctask.TaskManager) {
	fmt.Println("shrinking to 2 active workers")
	m.SetActiveWorkers(2)
	time.Sleep(50 * time.Millisecond)
	fmt.Printf("idle workers parked: %d\n", m.Snapshot().IdleWorkers)

	fmt.Println("restoring idle workers")
	m.ReleaseIdleWorkers()
	time.Sleep(50 * time.Millisecond)
	fmt.Printf("idle workers parked: %d\n", m.Snapshot().IdleWorkers)
}

func drainQueue(m *gctask.TaskManager) {
	m.ReleaseIdleWorkers()
	m.ReleaseAllResources()

	list := gctask.NewWorkList()
	m.SubmitAndWait(list)
}

func printStats(m *gctask.TaskManager) {
	s := m.Snapshot()
	fmt.Printf("\nfinal stats: delivered=%d completed=%d barriers=%d emptied_queue=%d avg_wait=%v\n",
		s.DeliveredTasks, s.CompletedTasks, s.Barriers, s.EmptiedQueue, s.AverageWait)
}
