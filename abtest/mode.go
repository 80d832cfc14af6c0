// Package abtest runs two simulations side by side under operator control.
//
// A Mode starts in setup, waits for its Setup collaborator to produce two
// simulations, and then alternates between paused and running until the
// operator quits. The mode is not safe for concurrent use; a single loop
// delivers ticks and commands to it.
package abtest

import (
	"fmt"
	"time"

	"github.com/sarchlab/lockstep/benchmark"
	"github.com/sarchlab/lockstep/pacing"
	"github.com/sarchlab/lockstep/sim/dual"
	"github.com/sarchlab/lockstep/sim/hooking"
	"github.com/sarchlab/lockstep/sim/timing"
)

// A list of hook poses raised by a Mode. The step and swap hooks of the pair
// are forwarded as well.
var (
	HookPosStateChange   = &hooking.HookPos{Name: "StateChange"}
	HookPosSpeedMeasured = &hooking.HookPos{Name: "SpeedMeasured"}
)

// Transition is the item of a HookPosStateChange hook.
type Transition struct {
	At   time.Time
	From string
	To   string
}

// SpeedSample is the item of a HookPosSpeedMeasured hook.
type SpeedSample struct {
	At       time.Time
	SimTime  timing.VTimeInSec
	Measured float64
	Desired  float64
}

// TickResult reports what a tick did.
type TickResult struct {
	// Redraw is true if anything visible changed.
	Redraw bool

	// Steps is the number of times each simulation was stepped.
	Steps int
}

// Mode is the operator-facing state machine.
type Mode struct {
	hooking.HookableBase

	clock timing.Clock
	pacer *pacing.Controller
	pair  *dual.Pair
	state State
}

// New creates a Mode with the default settings.
func New(setup Setup) *Mode {
	return MakeBuilder().Build(setup)
}

// State returns the current state.
func (m *Mode) State() State {
	return m.state
}

// Pair returns the simulation pair. It is nil during setup and after quit.
func (m *Mode) Pair() *dual.Pair {
	return m.pair
}

// DesiredSpeed returns the simulated seconds targeted per real second.
func (m *Mode) DesiredSpeed() float64 {
	return m.pacer.DesiredSpeed()
}

// Timestep returns the simulated time advanced by one step.
func (m *Mode) Timestep() timing.VTimeInSec {
	return m.pacer.Timestep()
}

// IsQuit returns true once the mode has reached its terminal state.
func (m *Mode) IsQuit() bool {
	_, ok := m.state.(*QuitState)
	return ok
}

// OnTick advances the mode to now.
func (m *Mode) OnTick(now time.Time) TickResult {
	switch s := m.state.(type) {
	case *SetupState:
		return m.tickSetup(now, s)
	case *PausedState:
		return TickResult{}
	case *RunningState:
		return m.tickRunning(now, s)
	case *QuitState:
		return TickResult{}
	default:
		panic(fmt.Sprintf("abtest: unknown state %T", s))
	}
}

func (m *Mode) tickSetup(now time.Time, s *SetupState) TickResult {
	primary, secondary, ready := s.setup.Poll()
	if !ready {
		return TickResult{}
	}

	m.pair = dual.NewPair(primary, secondary)
	m.pair.AcceptHook(hooking.HookFunc(m.InvokeHook))

	m.transition(now, &PausedState{})

	return TickResult{Redraw: true}
}

func (m *Mode) tickRunning(now time.Time, s *RunningState) TickResult {
	n, lastStep := m.pacer.Due(now, s.LastStep)
	if n == 0 {
		return TickResult{}
	}

	for i := 0; i < n; i++ {
		m.pair.StepBoth()
	}
	s.LastStep = lastStep

	if s.Benchmark.HasRealTimePassed(now, benchmark.Window) {
		m.measureSpeed(now, s)
	}

	return TickResult{Redraw: true, Steps: n}
}

func (m *Mode) measureSpeed(now time.Time, s *RunningState) {
	simTime := m.pair.Primary().Time()
	measured := s.Benchmark.Speed(now, simTime)
	s.Speed = s.Benchmark.MeasureSpeed(now, simTime, false)

	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    HookPosSpeedMeasured,
		Item: SpeedSample{
			At:       now,
			SimTime:  simTime,
			Measured: measured,
			Desired:  m.pacer.DesiredSpeed(),
		},
	})
}

func (m *Mode) transition(now time.Time, to State) {
	from := m.state
	m.state = to

	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    HookPosStateChange,
		Item: Transition{
			At:   now,
			From: from.Label(),
			To:   to.Label(),
		},
	})
}

// isActive returns true in the states where the pair exists.
func (m *Mode) isActive() bool {
	switch m.state.(type) {
	case *PausedState, *RunningState:
		return true
	default:
		return false
	}
}

// CmdRunPause starts a paused mode or pauses a running one. Starting opens a
// fresh benchmark window.
func (m *Mode) CmdRunPause() {
	switch m.state.(type) {
	case *PausedState:
		now := m.clock.Now()
		m.transition(now, &RunningState{
			LastStep:  now,
			Benchmark: benchmark.Start(now, m.pair.Primary().Time()),
			Speed:     benchmark.Placeholder,
		})
	case *RunningState:
		m.transition(m.clock.Now(), &PausedState{})
	}
}

// CmdSingleStep steps both simulations once. It only applies while paused.
func (m *Mode) CmdSingleStep() {
	if _, ok := m.state.(*PausedState); !ok {
		return
	}

	m.pair.StepBoth()
}

// CmdSpeedUp raises the desired speed.
func (m *Mode) CmdSpeedUp() {
	if !m.isActive() {
		return
	}

	m.pacer.Increase()
}

// CmdSlowDown lowers the desired speed, stopping at 0.
func (m *Mode) CmdSlowDown() {
	if !m.isActive() {
		return
	}

	m.pacer.Decrease()
}

// CmdSwap exchanges the primary and secondary simulations.
func (m *Mode) CmdSwap() {
	if !m.isActive() {
		return
	}

	m.pair.Swap()
}

// CmdQuit releases both simulations and ends the mode. Quitting during setup
// abandons it. The returned error comes from releasing the simulations; the
// mode is terminal either way.
func (m *Mode) CmdQuit() error {
	if m.IsQuit() {
		return nil
	}

	var err error
	if m.pair != nil {
		err = m.pair.Close()
		m.pair = nil
	}

	m.transition(m.clock.Now(), &QuitState{})

	return err
}

// Apply runs the given command.
func (m *Mode) Apply(c Command) error {
	switch c {
	case CommandRunPause:
		m.CmdRunPause()
	case CommandSingleStep:
		m.CmdSingleStep()
	case CommandSpeedUp:
		m.CmdSpeedUp()
	case CommandSlowDown:
		m.CmdSlowDown()
	case CommandSwap:
		m.CmdSwap()
	case CommandQuit:
		return m.CmdQuit()
	default:
		return fmt.Errorf("abtest: unknown command %d", int(c))
	}

	return nil
}
