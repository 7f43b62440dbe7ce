// Package gctask implements a parallel garbage-collection task dispatcher:
// a fixed-size pool of long-lived workers coordinated through a single
// monitor, with affinity-biased dispatch, a one-at-a-time execution
// barrier and a dynamic-worker idling mechanism.
package gctask

import "time"

// Clock abstracts time operations so tests can substitute a mock clock
// instead of waiting on the wall clock.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	After(d time.Duration) <-chan time.Time
	NewTimer(d time.Duration) Timer
	NewTicker(d time.Duration) Ticker
}

// Timer mirrors time.Timer behind an interface.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// Ticker mirrors time.Ticker behind an interface.
type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

// RealClock implements Clock with the real wall clock.
type RealClock struct{}

// NewRealClock returns the default, real-time Clock.
func NewRealClock() Clock { return RealClock{} }

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (RealClock) NewTimer(d time.Duration) Timer {
	return &realTimer{timer: time.NewTimer(d)}
}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTimer struct{ timer *time.Timer }

func (t *realTimer) C() <-chan time.Time        { return t.timer.C }
func (t *realTimer) Stop() bool                 { return t.timer.Stop() }
func (t *realTimer) Reset(d time.Duration) bool { return t.timer.Reset(d) }

type realTicker struct{ ticker *time.Ticker }

func (t *realTicker) C() <-chan time.Time      { return t.ticker.C }
func (t *realTicker) Stop()                    { t.ticker.Stop() }
func (t *realTicker) Reset(d time.Duration)    { t.ticker.Reset(d) }
