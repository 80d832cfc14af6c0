package scenario

import (
	"github.com/sarchlab/lockstep/sim/simulation"
	"github.com/sarchlab/lockstep/sim/timing"
)

// Handle names of the two simulations.
const (
	NameA = "A"
	NameB = "B"
)

// Setup prepares the two simulations of an A/B test. It implements
// abtest.Setup and is ready as soon as it is created.
type Setup struct {
	a, b *simulation.Handle
}

// NewSetup builds simulation A from the primary scenario without its edits
// and simulation B from the secondary scenario with its edits. A nil
// secondary compares the primary scenario against its own edits.
func NewSetup(
	primary, secondary *Scenario,
	timestep timing.VTimeInSec,
) (*Setup, error) {
	if secondary == nil {
		secondary = primary
	}

	mapA, err := primary.Map(false)
	if err != nil {
		return nil, err
	}

	mapB, err := secondary.Map(true)
	if err != nil {
		return nil, err
	}

	return &Setup{
		a: simulation.NewHandle(NameA, NewSim(primary, timestep), mapA),
		b: simulation.NewHandle(NameB, NewSim(secondary, timestep), mapB),
	}, nil
}

// Poll hands out the two simulations.
func (s *Setup) Poll() (primary, secondary *simulation.Handle, ready bool) {
	return s.a, s.b, true
}
