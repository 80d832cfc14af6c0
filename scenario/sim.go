package scenario

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/lockstep/sim/simulation"
	"github.com/sarchlab/lockstep/sim/timing"
)

// congestion slows trips down by this factor per extra vehicle per lane.
const congestion = 0.25

type trip struct {
	road int
	pos  float64
}

// Sim moves trips along the roads of a Map. Two Sims created from the same
// scenario make the same choices, so their difference comes only from the
// map they are stepped with.
type Sim struct {
	timestep  timing.VTimeInSec
	now       timing.VTimeInSec
	nextSpawn timing.VTimeInSec

	rng      *rand.Rand
	demand   Trips
	active   []trip
	spawned  int
	finished int
	closed   bool
}

// NewSim creates a simulation of the scenario's demand.
func NewSim(s *Scenario, timestep timing.VTimeInSec) *Sim {
	if timestep <= 0 {
		panic("scenario: timestep must be positive")
	}

	return &Sim{
		timestep: timestep,
		rng:      rand.New(rand.NewSource(s.Seed)),
		demand:   s.Trips,
	}
}

// Time returns the simulated time.
func (s *Sim) Time() timing.VTimeInSec {
	return s.now
}

// Step advances the simulation by one timestep on the given map, which must
// be a *Map.
func (s *Sim) Step(m simulation.Map) {
	if s.closed {
		panic("scenario: step after close")
	}

	roads := m.(*Map).roads

	s.now += s.timestep
	s.spawn(roads)
	s.move(roads)
}

func (s *Sim) spawn(roads []Road) {
	for s.spawned < s.demand.Count && s.nextSpawn <= s.now {
		s.active = append(s.active, trip{road: s.rng.Intn(len(roads))})
		s.spawned++
		s.nextSpawn += timing.VTimeInSec(s.demand.SpawnInterval)
	}
}

func (s *Sim) move(roads []Road) {
	occupancy := make([]int, len(roads))
	for _, t := range s.active {
		occupancy[t.road]++
	}

	dt := s.timestep.Seconds()
	remaining := s.active[:0]

	for _, t := range s.active {
		r := roads[t.road]
		perLane := float64(occupancy[t.road]-1) / float64(r.Lanes)
		t.pos += r.SpeedLimit / (1 + congestion*perLane) * dt

		if t.pos >= r.Length {
			s.finished++
			continue
		}

		remaining = append(remaining, t)
	}

	s.active = remaining
}

// IsDone returns true once every trip has spawned and arrived.
func (s *Sim) IsDone() bool {
	return s.spawned == s.demand.Count && len(s.active) == 0
}

// Active returns the number of trips on the roads.
func (s *Sim) Active() int {
	return len(s.active)
}

// Finished returns the number of trips that arrived.
func (s *Sim) Finished() int {
	return s.finished
}

// Summary describes the progress at the current time.
func (s *Sim) Summary() string {
	return fmt.Sprintf("At %s: %d active, %d finished, %d total",
		s.now, len(s.active), s.finished, s.demand.Count)
}

// Close releases the trips. The simulation cannot be stepped afterwards.
func (s *Sim) Close() error {
	s.closed = true
	s.active = nil

	return nil
}

// Progress reports the finished, active and total trips.
func (s *Sim) Progress() (finished, inProgress, total uint64) {
	return uint64(s.finished), uint64(len(s.active)), uint64(s.demand.Count)
}
