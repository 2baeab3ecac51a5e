// Package clock abstracts time for components that schedule work against
// wall-clock deadlines. Production code uses the system clock; tests use a
// fake that advances time deterministically so timing-sensitive behavior
// can be asserted without real sleeps.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock provides the current time and interruptible sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until ctx is cancelled, whichever comes
	// first. Returns ctx.Err() on cancellation, nil otherwise.
	// Non-positive durations return immediately.
	Sleep(ctx context.Context, d time.Duration) error
}

// System is a Clock backed by the real system clock.
type System struct{}

// NewSystem returns a Clock backed by time.Now and a real timer.
func NewSystem() *System {
	return &System{}
}

// Now returns the current system time.
func (*System) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is cancelled.
func (*System) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fake is a Clock whose time only moves when the test advances it.
// Sleep records the requested duration, advances the fake time, and
// returns immediately, so replay tests run in microseconds while still
// observing the exact wait schedule.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewFake returns a Fake clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Sleep advances the fake time by d and records the sleep.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d > 0 {
		f.now = f.now.Add(d)
		f.sleeps = append(f.sleeps, d)
	}
	return nil
}

// Advance moves the fake time forward by d without recording a sleep.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Sleeps returns the durations of all recorded sleeps, in order.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}
