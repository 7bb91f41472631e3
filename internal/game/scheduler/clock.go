package scheduler

import (
	"sync"
	"time"
)

// DisplayClock refreshes a wall-clock reading on a fixed interval for
// presentation. It never touches game state.
type DisplayClock struct {
	interval time.Duration
	now      func() time.Time

	mu          sync.Mutex
	current     time.Time
	subscribers map[chan<- time.Time]struct{}
}

// NewDisplayClock returns a stopped clock reading now() every interval.
//
// Precondition: interval > 0; now must not be nil.
func NewDisplayClock(interval time.Duration, now func() time.Time) *DisplayClock {
	return &DisplayClock{
		interval:    interval,
		now:         now,
		current:     now(),
		subscribers: make(map[chan<- time.Time]struct{}),
	}
}

// Now returns the most recent reading.
func (c *DisplayClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers ch to receive each reading. Full channels miss ticks.
func (c *DisplayClock) Subscribe(ch chan<- time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch.
func (c *DisplayClock) Unsubscribe(ch chan<- time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, ch)
}

// Start launches the refresh goroutine and returns an idempotent stop function.
func (c *DisplayClock) Start() (stop func()) {
	t := NewTicker(c.interval, func() {
		c.mu.Lock()
		c.current = c.now()
		cur := c.current
		subs := make([]chan<- time.Time, 0, len(c.subscribers))
		for ch := range c.subscribers {
			subs = append(subs, ch)
		}
		c.mu.Unlock()
		for _, ch := range subs {
			select {
			case ch <- cur:
			default:
			}
		}
	})
	return t.Stop
}
