// Package simulation defines the narrow view the driver has of one simulation
// instance and the map it runs on.
package simulation

import (
	"fmt"
	"io"

	"github.com/sarchlab/lockstep/sim/timing"
)

// A Map is the world a simulation runs on. The driver only needs to label it.
type Map interface {
	// EditsName returns a human-readable label of the edits applied to the
	// map.
	EditsName() string
}

// A Simulation advances one instance of the world. What a step computes is up
// to the implementation.
type Simulation interface {
	timing.TimeTeller

	// Step advances the simulation by one fixed timestep.
	Step(m Map)

	// IsDone returns true if the simulation has nothing left to do.
	IsDone() bool

	// Summary returns a one-line description of the simulation state.
	Summary() string
}

// A Handle binds a simulation to its map.
type Handle struct {
	name string
	sim  Simulation
	m    Map
}

// NewHandle creates a new handle. Both the simulation and the map are
// required.
func NewHandle(name string, sim Simulation, m Map) *Handle {
	if sim == nil {
		panic("simulation " + name + " has no simulation")
	}

	if m == nil {
		panic("simulation " + name + " has no map")
	}

	return &Handle{
		name: name,
		sim:  sim,
		m:    m,
	}
}

// Name returns the name of the handle.
func (h *Handle) Name() string {
	return h.name
}

// Simulation returns the simulation bound to the handle.
func (h *Handle) Simulation() Simulation {
	return h.sim
}

// Map returns the map bound to the handle.
func (h *Handle) Map() Map {
	return h.m
}

// Step advances the simulation on its own map.
func (h *Handle) Step() {
	h.sim.Step(h.m)
}

// Time returns the current simulated time.
func (h *Handle) Time() timing.VTimeInSec {
	return h.sim.Time()
}

// IsDone returns true if the simulation has finished.
func (h *Handle) IsDone() bool {
	return h.sim.IsDone()
}

// Summary returns the summary of the simulation.
func (h *Handle) Summary() string {
	return h.sim.Summary()
}

// Label returns the edits label of the map.
func (h *Handle) Label() string {
	return h.m.EditsName()
}

// Close releases the simulation if it holds any resource.
func (h *Handle) Close() error {
	closer, ok := h.sim.(io.Closer)
	if !ok {
		return nil
	}

	err := closer.Close()
	if err != nil {
		return fmt.Errorf("simulation %s: %w", h.name, err)
	}

	return nil
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s (%s)", h.name, h.Label())
}
