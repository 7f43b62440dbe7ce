package gcthread

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ziyiluo/gctaskmanager/internal/testutils"
	"github.com/ziyiluo/gctaskmanager/pkg/gctask"
)

func TestGoroutineThreadFactory_RunsOrdinaryTasks(t *testing.T) {
	tc := testutils.NewTestContext(t, &testutils.TestConfig{Timeout: 2 * time.Second, Workers: 3})
	defer tc.Cleanup()

	factory := New(tc.Context(), nil)
	m, err := gctask.New(gctask.DefaultConfig(3, factory))
	tc.RequireNoError(err)
	tc.AddCleanup(factory.Stop)

	var completed int64
	list := gctask.NewWorkList()
	for i := 0; i < 10; i++ {
		list.Enqueue(gctask.NewOrdinaryTask(uint64(i), gctask.NoAffinity, func(context.Context) error {
			atomic.AddInt64(&completed, 1)
			return nil
		}))
	}

	m.SubmitAndWait(list)
	tc.AssertEventually(func() bool {
		return atomic.LoadInt64(&completed) == 10
	}, time.Second, time.Millisecond)
}

func TestGoroutineThreadFactory_ReportsErrorsAndPanics(t *testing.T) {
	var mu sync.Mutex
	var reports []string

	handler := func(workerID int, gcID uint64, err error) {
		mu.Lock()
		reports = append(reports, err.Error())
		mu.Unlock()
	}

	factory := New(context.Background(), handler)
	m, err := gctask.New(gctask.DefaultConfig(1, factory))
	require.NoError(t, err)
	defer factory.Stop()

	failing := errors.New("boom")
	list := gctask.NewWorkList()
	list.Enqueue(gctask.NewOrdinaryTask(1, gctask.NoAffinity, func(context.Context) error {
		return failing
	}))
	list.Enqueue(gctask.NewOrdinaryTask(2, gctask.NoAffinity, func(context.Context) error {
		panic("kaboom")
	}))

	m.SubmitAndWait(list)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reports) == 2
	}, time.Second, time.Millisecond)
}

func TestGoroutineThreadFactory_StopJoinsWorkers(t *testing.T) {
	factory := New(context.Background(), nil)
	m, err := gctask.New(gctask.DefaultConfig(2, factory))
	require.NoError(t, err)

	list := gctask.NewWorkList()
	list.Enqueue(gctask.NewOrdinaryTask(1, gctask.NoAffinity, func(context.Context) error { return nil }))
	m.SubmitAndWait(list)

	factory.Stop()
	factory.Stop() // idempotent
}
