package abtest

import (
	"time"

	"github.com/sarchlab/lockstep/benchmark"
	"github.com/sarchlab/lockstep/sim/simulation"
)

// Setup produces the two simulations to compare. The mode polls it on every
// tick until it is ready.
type Setup interface {
	// Poll returns the primary and the secondary handle once both are
	// available. Until then it returns false.
	Poll() (primary, secondary *simulation.Handle, ready bool)
}

// State is one of *SetupState, *PausedState, *RunningState and *QuitState.
type State interface {
	// Label names the state.
	Label() string

	isState()
}

// SetupState waits for the setup collaborator.
type SetupState struct {
	setup Setup
}

// PausedState waits for the operator. The simulations only move through
// single steps.
type PausedState struct{}

// RunningState advances the simulations at the desired speed.
type RunningState struct {
	// LastStep is the instant the pacing interval counts from.
	LastStep time.Time

	// Benchmark measures the achieved speed since the mode last started
	// running.
	Benchmark *benchmark.Benchmark

	// Speed is the last measured speed, or benchmark.Placeholder.
	Speed string
}

// QuitState is terminal. The simulations have been released.
type QuitState struct{}

// Label names the state.
func (*SetupState) Label() string { return "setup" }

// Label names the state.
func (*PausedState) Label() string { return "paused" }

// Label names the state.
func (*RunningState) Label() string { return "running" }

// Label names the state.
func (*QuitState) Label() string { return "quit" }

func (*SetupState) isState()   {}
func (*PausedState) isState()  {}
func (*RunningState) isState() {}
func (*QuitState) isState()    {}
