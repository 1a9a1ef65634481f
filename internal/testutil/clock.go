package testutil

import (
	"sync"
	"time"
)

// StepClock is a deterministic wall clock for tests.
//
// Every call to Now returns the current instant and then advances it by
// the step, so consecutive readings are distinct and ordered.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewStepClock creates a clock that first reads start and advances by step.
// A non-positive step defaults to one nanosecond.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	if step <= 0 {
		step = time.Nanosecond
	}
	return &StepClock{start: start, now: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the instant the next Now call will return.
func (c *StepClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to its start.
//
// Used for test reuse. After Reset(), Now() returns start again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
