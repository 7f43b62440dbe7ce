package gctask

import (
	"testing"
	"time"

	"github.com/coder/quartz"
)

// newMockClock creates a mock clock for testing.
func newMockClock(t testing.TB) *quartz.Mock {
	return quartz.NewMock(t)
}

// clockWrapper adapts a quartz.Mock to gctask.Clock, so manager tests can
// advance dispatch-latency observability deterministically instead of
// depending on wall-clock time.
type clockWrapper struct {
	*quartz.Mock
}

// newClockWrapper creates a new clockWrapper around mock.
func newClockWrapper(mock *quartz.Mock) *clockWrapper {
	return &clockWrapper{Mock: mock}
}

// After returns a channel that delivers the current time after d.
func (c *clockWrapper) After(d time.Duration) <-chan time.Time {
	timer := c.Mock.NewTimer(d)
	return timer.C
}

// Now returns the mock's current time.
func (c *clockWrapper) Now() time.Time {
	return c.Mock.Now()
}

// Since returns the mock-clock duration elapsed since t.
func (c *clockWrapper) Since(t time.Time) time.Duration {
	return c.Mock.Since(t)
}

// NewTimer creates a gctask.Timer backed by the mock clock.
func (c *clockWrapper) NewTimer(d time.Duration) Timer {
	timer := c.Mock.NewTimer(d)
	return &timerWrapper{timer: timer}
}

// NewTicker creates a gctask.Ticker backed by the mock clock.
func (c *clockWrapper) NewTicker(d time.Duration) Ticker {
	ticker := c.Mock.NewTicker(d)
	return &tickerWrapper{ticker: ticker}
}

// timerWrapper wraps a quartz timer as a gctask.Timer.
type timerWrapper struct {
	timer *quartz.Timer
}

func (t *timerWrapper) C() <-chan time.Time       { return t.timer.C }
func (t *timerWrapper) Stop() bool                { return t.timer.Stop() }
func (t *timerWrapper) Reset(d time.Duration) bool { return t.timer.Reset(d) }

// tickerWrapper wraps a quartz ticker as a gctask.Ticker.
type tickerWrapper struct {
	ticker *quartz.Ticker
}

func (t *tickerWrapper) C() <-chan time.Time   { return t.ticker.C }
func (t *tickerWrapper) Stop()                 { t.ticker.Stop() }
func (t *tickerWrapper) Reset(d time.Duration) { t.ticker.Reset(d) }
