// Package pacing decides when a simulation step is due in wall-clock time.
package pacing

import (
	"fmt"
	"math"
	"time"

	"github.com/sarchlab/lockstep/sim/timing"
)

// AdjustSpeed is the amount a single speed-up or slow-down changes the
// desired speed by.
const AdjustSpeed = 0.1

// DefaultMaxCatchUpSteps bounds the number of steps a CatchUp controller takes
// in a single evaluation.
const DefaultMaxCatchUpSteps = 10

// Policy selects how a controller behaves when more than one step interval
// has elapsed since the last step.
type Policy int

const (
	// SingleStep takes at most one step per evaluation and restarts the
	// interval at the evaluation instant. A stalled loop falls behind the
	// desired speed instead of catching up.
	SingleStep Policy = iota

	// CatchUp takes one step per elapsed interval, up to a bound, and carries
	// the remainder into the next evaluation.
	CatchUp
)

func (p Policy) String() string {
	switch p {
	case SingleStep:
		return "single-step"
	case CatchUp:
		return "catch-up"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts the name of a policy into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "single-step", "":
		return SingleStep, nil
	case "catch-up":
		return CatchUp, nil
	default:
		return SingleStep, fmt.Errorf("pacing: unknown policy %q", s)
	}
}

// ShouldStep returns true if a step is due. A step is due when the desired
// speed is positive and at least timestep/desiredSpeed seconds of real time
// have passed since lastStep.
func ShouldStep(
	now, lastStep time.Time,
	desiredSpeed float64,
	timestep timing.VTimeInSec,
) bool {
	interval, ok := stepInterval(desiredSpeed, timestep)
	if !ok {
		return false
	}

	return now.Sub(lastStep) >= interval
}

func stepInterval(
	desiredSpeed float64,
	timestep timing.VTimeInSec,
) (time.Duration, bool) {
	if desiredSpeed <= 0 || math.IsNaN(desiredSpeed) {
		return 0, false
	}

	seconds := float64(timestep) / desiredSpeed
	if math.IsInf(seconds, 0) || seconds > math.MaxInt64/float64(time.Second) {
		return 0, false
	}

	return time.Duration(math.Round(seconds * float64(time.Second))), true
}

// A Controller owns the desired speed and applies the step policy.
type Controller struct {
	desiredSpeed    float64
	timestep        timing.VTimeInSec
	policy          Policy
	maxCatchUpSteps int
}

// NewController creates a single-step controller running at the given speed.
func NewController(
	timestep timing.VTimeInSec,
	desiredSpeed float64,
) *Controller {
	if timestep <= 0 {
		panic("timestep must be positive")
	}

	c := &Controller{
		timestep:        timestep,
		policy:          SingleStep,
		maxCatchUpSteps: DefaultMaxCatchUpSteps,
	}
	c.SetDesiredSpeed(desiredSpeed)

	return c
}

// WithPolicy sets the catch-up policy of the controller.
func (c *Controller) WithPolicy(p Policy) *Controller {
	c.policy = p
	return c
}

// WithMaxCatchUpSteps bounds the steps a CatchUp controller takes per
// evaluation.
func (c *Controller) WithMaxCatchUpSteps(n int) *Controller {
	if n < 1 {
		panic("max catch-up steps must be at least 1")
	}

	c.maxCatchUpSteps = n

	return c
}

// DesiredSpeed returns the simulated seconds the controller targets per real
// second.
func (c *Controller) DesiredSpeed() float64 {
	return c.desiredSpeed
}

// SetDesiredSpeed sets the desired speed. Negative values are clamped to 0.
func (c *Controller) SetDesiredSpeed(speed float64) {
	if math.IsNaN(speed) || speed < 0 {
		speed = 0
	}

	c.desiredSpeed = speed
}

// Increase raises the desired speed by AdjustSpeed.
func (c *Controller) Increase() {
	c.SetDesiredSpeed(c.desiredSpeed + AdjustSpeed)
}

// Decrease lowers the desired speed by AdjustSpeed, stopping at 0.
func (c *Controller) Decrease() {
	c.SetDesiredSpeed(math.Max(c.desiredSpeed-AdjustSpeed, 0))
}

// Timestep returns the simulated time advanced by one step.
func (c *Controller) Timestep() timing.VTimeInSec {
	return c.timestep
}

// Policy returns the policy of the controller.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Interval returns the real time between two steps. It returns false if the
// controller never steps at the current speed.
func (c *Controller) Interval() (time.Duration, bool) {
	return stepInterval(c.desiredSpeed, c.timestep)
}

// ShouldStepNow applies ShouldStep with the controller's speed and timestep.
func (c *Controller) ShouldStepNow(now, lastStep time.Time) bool {
	return ShouldStep(now, lastStep, c.desiredSpeed, c.timestep)
}

// Due returns how many steps to take now and the instant to record as the
// last step afterward. When no step is due, it returns 0 and lastStep.
func (c *Controller) Due(now, lastStep time.Time) (int, time.Time) {
	if !c.ShouldStepNow(now, lastStep) {
		return 0, lastStep
	}

	if c.policy == SingleStep {
		return 1, now
	}

	interval, _ := c.Interval()
	if interval == 0 {
		return 1, now
	}

	n := int(now.Sub(lastStep) / interval)
	if n > c.maxCatchUpSteps {
		return c.maxCatchUpSteps, now
	}

	return n, lastStep.Add(time.Duration(n) * interval)
}
