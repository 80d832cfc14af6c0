package timing

import (
	"sync"
	"time"
)

// A Clock tells the wall-clock time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system's monotonic clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to. It is used by headless runs and tests
// that need exact control over elapsed real time.
type ManualClock struct {
	lock sync.Mutex
	now  time.Time
}

// NewManualClock creates a ManualClock that starts at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current instant of the clock.
func (c *ManualClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("manual clock cannot go backward")
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if t.Before(c.now) {
		panic("manual clock cannot go backward")
	}

	c.now = t
}
