// Package scenario provides a small deterministic traffic model that can be
// driven side by side, with and without a set of road edits.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// NoEditsName is the edits name of a map without edits.
const NoEditsName = "untitled edits"

// Road is a one-way road that trips travel along.
type Road struct {
	Name string `yaml:"name"`

	// Length is in meters.
	Length float64 `yaml:"length"`

	Lanes int `yaml:"lanes"`

	// SpeedLimit is in meters per second.
	SpeedLimit float64 `yaml:"speed_limit"`
}

// Trips describes the demand.
type Trips struct {
	Count int `yaml:"count"`

	// SpawnInterval is the simulated seconds between two spawns.
	SpawnInterval float64 `yaml:"spawn_interval"`
}

// RoadEdit overrides one road. Unset fields keep the original value.
type RoadEdit struct {
	Road       string   `yaml:"road"`
	Lanes      *int     `yaml:"lanes,omitempty"`
	SpeedLimit *float64 `yaml:"speed_limit,omitempty"`
	Closed     bool     `yaml:"closed,omitempty"`
}

// Edits is a named set of road overrides.
type Edits struct {
	Name  string     `yaml:"name"`
	Roads []RoadEdit `yaml:"roads"`
}

// Scenario is the content of a scenario file.
type Scenario struct {
	Name  string `yaml:"name"`
	Seed  int64  `yaml:"seed"`
	Roads []Road `yaml:"roads"`
	Trips Trips  `yaml:"trips"`
	Edits *Edits `yaml:"edits,omitempty"`
}

// Load decodes and validates a scenario. Unknown fields are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	s := &Scenario{}

	err := dec.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}

	err = s.Validate()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// LoadFile loads a scenario from a YAML file.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Validate checks that the scenario can be simulated.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario: name is required")
	}

	if len(s.Roads) == 0 {
		return fmt.Errorf("scenario %s: no roads", s.Name)
	}

	seen := make(map[string]bool, len(s.Roads))
	for _, r := range s.Roads {
		err := validateRoad(r)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}

		if seen[r.Name] {
			return fmt.Errorf("scenario %s: duplicated road %q", s.Name, r.Name)
		}
		seen[r.Name] = true
	}

	if s.Trips.Count < 0 {
		return fmt.Errorf("scenario %s: negative trip count", s.Name)
	}

	if s.Trips.Count > 0 && s.Trips.SpawnInterval <= 0 {
		return fmt.Errorf("scenario %s: spawn interval must be positive",
			s.Name)
	}

	if s.Edits != nil {
		_, err := s.Map(true)
		if err != nil {
			return err
		}
	}

	return nil
}

func validateRoad(r Road) error {
	switch {
	case r.Name == "":
		return errors.New("road without a name")
	case r.Length <= 0:
		return fmt.Errorf("road %q: length must be positive", r.Name)
	case r.Lanes <= 0:
		return fmt.Errorf("road %q: lanes must be positive", r.Name)
	case r.SpeedLimit <= 0:
		return fmt.Errorf("road %q: speed limit must be positive", r.Name)
	}

	return nil
}

// Map resolves the road network, applying the edits if withEdits is set and
// the scenario has any.
func (s *Scenario) Map(withEdits bool) (*Map, error) {
	m := &Map{
		scenario: s.Name,
		roads:    make([]Road, len(s.Roads)),
	}
	copy(m.roads, s.Roads)

	if !withEdits || s.Edits == nil {
		return m, nil
	}

	m.edits = s.Edits.Name

	err := m.apply(s.Edits.Roads)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: edits %q: %w",
			s.Name, s.Edits.Name, err)
	}

	return m, nil
}
