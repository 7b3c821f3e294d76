package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a resettable unit sequencer for tests.
// It satisfies compiler.Sequencer, so the same scenario run twice produces
// identical seq values.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock starting at 0.
// The first call to Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset resets the clock to 0.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

// StepNow returns a wall-clock stand-in that starts at base and advances by
// step on every call. Phase timings measured with it are exact multiples
// of step.
func StepNow(base time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := base.Add(-step)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}
