// Package scheduler drives everything that happens on a timer: the recurring
// auto-clicker, the delayed rounds of a speed burst, and the display clock.
package scheduler

import (
	"sync"
	"time"
)

// Timer fires a callback once after a delay unless stopped.
// It is safe for concurrent use.
type Timer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// AfterFunc starts a Timer that calls fn in its own goroutine after d.
//
// Precondition: d >= 0; fn must not be nil.
// Postcondition: fn is called once unless Stop is called first.
func AfterFunc(d time.Duration, fn func()) *Timer {
	t := &Timer{}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		stopped := t.stopped
		t.stopped = true
		t.mu.Unlock()
		if !stopped {
			fn()
		}
	})
	return t
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: returns true if the call stopped the callback from firing.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

// Ticker calls a callback every interval until stopped.
type Ticker struct {
	interval time.Duration
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	stopped  bool
}

// NewTicker starts a Ticker. Ticks are delivered sequentially from a single
// goroutine; a slow callback delays, but never overlaps, the next tick.
//
// Precondition: interval > 0; fn must not be nil.
func NewTicker(interval time.Duration, fn func()) *Ticker {
	if interval <= 0 {
		panic("scheduler.NewTicker: interval must be > 0")
	}
	t := &Ticker{interval: interval, done: make(chan struct{})}
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-tk.C:
				t.mu.Lock()
				stopped := t.stopped
				t.mu.Unlock()
				if stopped {
					return
				}
				fn()
			}
		}
	}()
	return t
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Stop cancels future ticks. Safe to call multiple times.
//
// Postcondition: no tick starts after Stop returns. A tick already running
// completes.
func (t *Ticker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.once.Do(func() { close(t.done) })
}
