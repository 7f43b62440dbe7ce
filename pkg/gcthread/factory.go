package gcthread

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ziyiluo/gctaskmanager/pkg/gctask"
)

// ErrorHandler is invoked whenever a dispatched Ordinary item's body
// returns an error or panics. It is the gcthread analogue of the
// teacher's types.ErrorHandler callback on Worker.
type ErrorHandler func(workerID int, gcID uint64, err error)

// GoroutineThreadFactory is the default gctask.ThreadFactory: each
// worker is a goroutine running the canonical
// get_task -> execute -> note_completion loop (adapted from the
// teacher's Worker.Start / Worker.executeTask).
//
// A GoroutineThreadFactory must be constructed with New before it is
// handed to gctask.New, since StartWorker needs somewhere to track the
// goroutines it spawns for Stop to join on.
type GoroutineThreadFactory struct {
	ctx          context.Context
	errorHandler ErrorHandler

	mu   sync.Mutex
	wg   sync.WaitGroup
	quit chan struct{}
	m    *gctask.TaskManager
}

// New returns a GoroutineThreadFactory whose workers run under ctx (a
// cancelled ctx causes every worker loop to exit after its current
// item) and report Ordinary-item errors and panics to handler, if
// non-nil.
func New(ctx context.Context, handler ErrorHandler) *GoroutineThreadFactory {
	if ctx == nil {
		ctx = context.Background()
	}
	return &GoroutineThreadFactory{
		ctx:          ctx,
		errorHandler: handler,
		quit:         make(chan struct{}),
	}
}

// StartWorker implements gctask.ThreadFactory by spawning a goroutine
// running worker id's loop against m.
func (f *GoroutineThreadFactory) StartWorker(m *gctask.TaskManager, id int) error {
	f.mu.Lock()
	f.wg.Add(1)
	f.m = m
	f.mu.Unlock()

	go func() {
		defer f.wg.Done()
		f.runWorker(m, id)
	}()
	return nil
}

// Stop signals every worker loop to exit once it finishes its current
// item, then blocks until all of them have returned. A worker parked in
// GetTask on an empty, unblocked queue would otherwise never reach the
// quit check again, so Stop forces a wake via ReleaseAllResources —
// every worker's resource_flag comes back true, get_task's wait
// condition clears, and the worker observes quit on its next iteration.
func (f *GoroutineThreadFactory) Stop() {
	f.mu.Lock()
	already := false
	select {
	case <-f.quit:
		already = true
	default:
		close(f.quit)
	}
	m := f.m
	f.mu.Unlock()

	if !already && m != nil {
		m.ReleaseAllResources()
	}

	f.wg.Wait()
}

func (f *GoroutineThreadFactory) runWorker(m *gctask.TaskManager, id int) {
	for {
		select {
		case <-f.quit:
			return
		case <-f.ctx.Done():
			return
		default:
		}

		item := m.GetTask(id)

		switch item.Kind() {
		case gctask.Noop:
			if m.ShouldRelease(id) {
				m.NoteRelease(id)
			}
			m.NoteCompletion(id)
		case gctask.Idle:
			m.RunIdle()
		case gctask.Barrier:
			m.RunBarrier(item)
			m.NoteCompletion(id)
		case gctask.Ordinary:
			err := f.executeItem(item)
			if err != nil && f.errorHandler != nil {
				f.errorHandler(id, item.GCID(), err)
			}
			m.NoteCompletion(id)
		}
	}
}

// executeItem runs item's body with panic recovery, mirroring the
// teacher's Worker.executeTask.
func (f *GoroutineThreadFactory) executeItem(item *gctask.WorkItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			switch v := r.(type) {
			case error:
				err = fmt.Errorf("gcthread: task %d panicked: %w\n%s", item.GCID(), v, buf[:n])
			default:
				err = fmt.Errorf("gcthread: task %d panicked: %v\n%s", item.GCID(), v, buf[:n])
			}
		}
	}()

	return item.Execute(f.ctx)
}
