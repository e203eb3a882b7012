package core

// export_limiter.go bounds how many exports build and send at once.
//
// Each export holds three collections in memory plus their CSV and HTML
// renderings until the mail provider accepts the message, so the number in
// flight is capped. A request that cannot get a slot within maxWait fails
// with ErrTooManyExports. Shutdown calls WaitForDrain so in-flight exports
// finish before the process exits.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyExports is returned when every export slot stays busy for the
// whole wait.
var ErrTooManyExports = errors.New("too many exports in progress")

const (
	DefaultMaxConcurrentExports = 5
	DefaultExportWait           = 30 * time.Second
)

// ExportLimiter is a counting semaphore over export runs.
type ExportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu      sync.Mutex
	active  int
	drained chan struct{}
}

// NewExportLimiter allows maxConcurrent exports at once. Non-positive
// arguments fall back to the defaults.
func NewExportLimiter(maxConcurrent int, maxWait time.Duration) *ExportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentExports
	}
	if maxWait <= 0 {
		maxWait = DefaultExportWait
	}
	return &ExportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. The caller must Release
// after a nil return.
func (l *ExportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.track(1)
		return nil
	case <-timer.C:
		return ErrTooManyExports
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *ExportLimiter) Release() {
	<-l.slots
	l.track(-1)
}

func (l *ExportLimiter) track(delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.active += delta
	if l.active == 0 && l.drained != nil {
		close(l.drained)
		l.drained = nil
	}
}

// Active returns the number of exports holding a slot.
func (l *ExportLimiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Capacity returns the maximum number of concurrent exports.
func (l *ExportLimiter) Capacity() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no export holds a slot or ctx ends.
func (l *ExportLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	if l.active == 0 {
		l.mu.Unlock()
		return nil
	}
	if l.drained == nil {
		l.drained = make(chan struct{})
	}
	done := l.drained
	l.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterStatus is a snapshot for the health endpoint.
type LimiterStatus struct {
	Active   int `json:"active"`
	Capacity int `json:"capacity"`
}

// Status returns the current limiter state.
func (l *ExportLimiter) Status() LimiterStatus {
	return LimiterStatus{Active: l.Active(), Capacity: l.Capacity()}
}
