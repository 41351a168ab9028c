package lamport

import (
	"sync"
)

// Clock is a per-node Lamport logical clock. It is monotonically
// non-decreasing and safe for concurrent use.
type Clock struct {
	mu   sync.Mutex
	time uint64
}

// NewClock creates a clock starting at the given value.
func NewClock(initial uint64) *Clock {
	return &Clock{time: initial}
}

// Tick advances the clock for a local event and returns the new time.
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time++
	return c.time
}

// Observe merges a timestamp received from a remote node:
// time = max(time, observed) + 1.
func (c *Clock) Observe(observed uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if observed > c.time {
		c.time = observed
	}
	c.time++
	return c.time
}

// Now returns the current time without advancing it.
func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}
