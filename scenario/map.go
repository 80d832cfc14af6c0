package scenario

import (
	"errors"
	"fmt"
)

// Map is a resolved road network. It implements simulation.Map.
type Map struct {
	scenario string
	edits    string
	roads    []Road
}

// EditsName returns the name of the applied edits.
func (m *Map) EditsName() string {
	if m.edits == "" {
		return NoEditsName
	}

	return m.edits
}

// Scenario returns the name of the scenario the map comes from.
func (m *Map) Scenario() string {
	return m.scenario
}

// Roads returns the open roads.
func (m *Map) Roads() []Road {
	return m.roads
}

func (m *Map) apply(edits []RoadEdit) error {
	closed := make(map[string]bool)

	for _, e := range edits {
		idx := m.find(e.Road)
		if idx < 0 {
			return fmt.Errorf("unknown road %q", e.Road)
		}

		if e.Closed {
			closed[e.Road] = true
			continue
		}

		r := &m.roads[idx]
		if e.Lanes != nil {
			r.Lanes = *e.Lanes
		}

		if e.SpeedLimit != nil {
			r.SpeedLimit = *e.SpeedLimit
		}

		err := validateRoad(*r)
		if err != nil {
			return err
		}
	}

	open := m.roads[:0]
	for _, r := range m.roads {
		if !closed[r.Name] {
			open = append(open, r)
		}
	}
	m.roads = open

	if len(m.roads) == 0 {
		return errors.New("every road is closed")
	}

	return nil
}

func (m *Map) find(name string) int {
	for i, r := range m.roads {
		if r.Name == name {
			return i
		}
	}

	return -1
}
