// Package testutil holds helpers shared by package tests.
package testutil

import (
	"sync"
	"time"
)

// StepClock is a deterministic wall clock for tests. Each call to Now
// returns the previous reading plus the step, starting from the origin.
//
// Safe for concurrent use. Pass clock.Now wherever a func() time.Time
// clock is accepted.
type StepClock struct {
	mu     sync.Mutex
	origin time.Time
	step   time.Duration
	calls  int64
}

// NewStepClock returns a clock whose first reading is origin.
func NewStepClock(origin time.Time, step time.Duration) *StepClock {
	return &StepClock{origin: origin, step: step}
}

// Now returns the next reading.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.origin.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Last returns the most recent reading without advancing, or the zero
// time before the first call.
func (c *StepClock) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == 0 {
		return time.Time{}
	}
	return c.origin.Add(time.Duration(c.calls-1) * c.step)
}

// Reset rewinds the clock so the next reading is origin again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
