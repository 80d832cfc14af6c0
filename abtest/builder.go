package abtest

import (
	"github.com/sarchlab/lockstep/pacing"
	"github.com/sarchlab/lockstep/sim/timing"
)

// Builder can be used to build a Mode.
type Builder struct {
	clock           timing.Clock
	timestep        timing.VTimeInSec
	desiredSpeed    float64
	policy          pacing.Policy
	maxCatchUpSteps int
}

// MakeBuilder creates a builder with the default settings: the real clock, a
// 0.1s timestep, real-time speed, and the single-step policy.
func MakeBuilder() Builder {
	return Builder{
		clock:           timing.RealClock{},
		timestep:        timing.DefaultTimestep,
		desiredSpeed:    1.0,
		policy:          pacing.SingleStep,
		maxCatchUpSteps: pacing.DefaultMaxCatchUpSteps,
	}
}

// WithClock sets the clock operator commands read the time from.
func (b Builder) WithClock(c timing.Clock) Builder {
	b.clock = c
	return b
}

// WithTimestep sets the simulated time advanced by one step.
func (b Builder) WithTimestep(t timing.VTimeInSec) Builder {
	b.timestep = t
	return b
}

// WithDesiredSpeed sets the initial desired speed.
func (b Builder) WithDesiredSpeed(s float64) Builder {
	b.desiredSpeed = s
	return b
}

// WithPolicy sets the pacing policy.
func (b Builder) WithPolicy(p pacing.Policy) Builder {
	b.policy = p
	return b
}

// WithMaxCatchUpSteps bounds the steps taken per tick under the catch-up
// policy.
func (b Builder) WithMaxCatchUpSteps(n int) Builder {
	b.maxCatchUpSteps = n
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.clock == nil {
		panic("clock is not set")
	}

	if b.timestep <= 0 {
		panic("timestep must be positive")
	}
}

// Build creates a Mode in the setup state.
func (b Builder) Build(setup Setup) *Mode {
	b.parametersMustBeValid()

	if setup == nil {
		panic("setup is not set")
	}

	pacer := pacing.NewController(b.timestep, b.desiredSpeed).
		WithPolicy(b.policy).
		WithMaxCatchUpSteps(b.maxCatchUpSteps)

	return &Mode{
		clock: b.clock,
		pacer: pacer,
		state: &SetupState{setup: setup},
	}
}
