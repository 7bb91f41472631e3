package scheduler

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned when work is scheduled after Close.
var ErrClosed = errors.New("scheduler closed")

// Scheduler owns the auto-click ticker and the pending burst timers.
//
// Invariant: at most one auto ticker is live; replacing it stops the old one.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	auto    *Ticker
	closed  bool
	pending sync.WaitGroup
}

// New returns an idle Scheduler.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// SetAuto replaces the recurring auto-click trigger with one firing fn every
// interval.
//
// Precondition: interval > 0; fn must not be nil.
// Postcondition: the previous trigger, if any, is cancelled.
func (s *Scheduler) SetAuto(interval time.Duration, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.auto != nil {
		s.auto.Stop()
	}
	s.auto = NewTicker(interval, fn)
	s.logger.Debug("auto trigger scheduled", zap.Duration("interval", interval))
	return nil
}

// StopAuto cancels the recurring auto-click trigger, if any.
func (s *Scheduler) StopAuto() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auto != nil {
		s.auto.Stop()
		s.auto = nil
		s.logger.Debug("auto trigger cancelled")
	}
}

// AutoInterval reports the live auto-click period.
func (s *Scheduler) AutoInterval() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auto == nil {
		return 0, false
	}
	return s.auto.Interval(), true
}

// Burst schedules n calls of fn at offsets 0, spacing, 2*spacing, ...
// measured from now. The calls cannot be cancelled once scheduled.
//
// Precondition: n >= 0; spacing >= 0; fn must not be nil.
// Postcondition: returns the offsets in firing order.
func (s *Scheduler) Burst(n int, spacing time.Duration, fn func(step int)) ([]time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	offsets := make([]time.Duration, n)
	for i := 0; i < n; i++ {
		step := i
		offsets[i] = time.Duration(i) * spacing
		s.pending.Add(1)
		AfterFunc(offsets[i], func() {
			defer s.pending.Done()
			fn(step)
		})
	}
	s.logger.Debug("burst scheduled", zap.Int("rounds", n), zap.Duration("spacing", spacing))
	return offsets, nil
}

// Close cancels the auto trigger, refuses new work, and waits for every
// scheduled burst round to fire.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.auto != nil {
		s.auto.Stop()
		s.auto = nil
	}
	s.mu.Unlock()
	s.pending.Wait()
}
