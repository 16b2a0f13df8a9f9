// Package schedule provides cancellable single-shot timers bound to a clock.
package schedule

import (
	"sync"
	"time"
)

// Stopper cancels a pending callback.
type Stopper interface {
	Stop() bool
}

// Clock abstracts time so timers can be driven manually in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// Real is the wall clock.
type Real struct{}

// Now implements Clock.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc implements Clock.
func (Real) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// Timer is a single-shot timer owned by one component. Reset replaces the
// pending callback and Stop cancels it. A callback whose timer was reset or
// stopped after it was already due never runs.
type Timer struct {
	clock Clock

	mu      sync.Mutex
	gen     uint64
	pending Stopper
}

// NewTimer returns an idle timer. A nil clock means Real.
func NewTimer(c Clock) *Timer {
	if c == nil {
		c = Real{}
	}
	return &Timer{clock: c}
}

// Reset arms the timer to call f after d, cancelling any pending callback.
func (t *Timer) Reset(d time.Duration, f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
	}
	t.gen++
	gen := t.gen
	t.pending = t.clock.AfterFunc(d, func() {
		t.mu.Lock()
		if t.gen != gen {
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.mu.Unlock()
		f()
	})
}

// Stop cancels the pending callback, if any.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Pending reports whether a callback is armed.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
