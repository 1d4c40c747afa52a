package audit

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing timestamps so rows inserted by one
// process order the same way by timestamp as by insertion, even when the
// wall clock stalls or steps back. Timestamps are truncated to microseconds,
// the resolution postgres keeps.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock returns a clock backed by time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockFrom returns a clock backed by the given source. Used in tests.
func NewClockFrom(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the next timestamp.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
