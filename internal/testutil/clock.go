package testutil

import (
	"sync"
	"time"
)

// Clock provides a thread-safe deterministic timestamp source for tests.
//
// Each call to Now returns the current timestamp and advances it by the
// configured step, so repeated calls within one test get distinct but
// predictable times. This enables byte-identical golden snapshot comparison.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewClock creates a clock whose first call to Now() returns start.
//
// A zero step freezes the clock: every call returns start.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{next: start, step: step}
}

// Now returns the next timestamp in the sequence.
//
// Thread-safe: uses mutex to protect the position.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}
