package penvelope

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Throttle is the process-wide gate keyed by (in the original) event
// loop: at most Concurrency calls may be in flight within Interval; once
// the window is crossed the gate closes until it elapses. In Go there is
// one goroutine scheduler per process rather than one event loop per
// request, so a single Throttle is shared by every provider instance
// that is given the same one — callers construct it once at startup and
// inject it.
type Throttle struct {
	sem         *semaphore.Weighted
	concurrency int64
	interval    time.Duration

	mu          sync.Mutex
	windowStart time.Time
	count       int64
}

// NewThrottle builds a gate allowing up to concurrency acquisitions within
// interval before blocking further callers until the window rolls over.
// concurrency <= 0 disables throttling entirely.
func NewThrottle(concurrency int, interval time.Duration) *Throttle {
	t := &Throttle{interval: interval}
	if concurrency > 0 {
		t.concurrency = int64(concurrency)
		t.sem = semaphore.NewWeighted(int64(concurrency))
	}
	return t
}

// Acquire blocks (respecting ctx) until a slot is free. It returns a
// release function the caller must invoke exactly once.
func (t *Throttle) Acquire(ctx context.Context) (func(), error) {
	if t == nil || t.sem == nil {
		return func() {}, nil
	}
	if err := t.windowGate(ctx); err != nil {
		return nil, err
	}
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { t.sem.Release(1) }, nil
}

// windowGate enforces "concurrency calls within interval": it resets the
// counter each time the interval elapses and otherwise counts calls,
// never suspending inside the critical section itself. A call that
// pushes the count over the limit then waits one full interval (or until
// ctx is done) after releasing the mutex.
func (t *Throttle) windowGate(ctx context.Context) error {
	if t.interval <= 0 {
		return nil
	}
	t.mu.Lock()
	now := time.Now()
	if t.windowStart.IsZero() || now.Sub(t.windowStart) >= t.interval {
		t.windowStart = now
		t.count = 0
	}
	t.count++
	over := t.count > t.concurrency
	t.mu.Unlock()

	if !over {
		return nil
	}
	select {
	case <-time.After(t.interval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
