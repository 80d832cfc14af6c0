package abtest

import (
	"fmt"
	"strings"

	"github.com/sarchlab/lockstep/sim/timing"
)

// ModeLabel is the title line of the status.
const ModeLabel = "A/B Test Mode"

// Status is a snapshot of what the operator sees.
type Status struct {
	Mode           string            `json:"mode"`
	State          string            `json:"state"`
	Edits          string            `json:"edits"`
	Summary        string            `json:"summary"`
	Speed          string            `json:"speed"`
	DesiredSpeed   float64           `json:"desired_speed"`
	Time           timing.VTimeInSec `json:"time"`
	Primary        string            `json:"primary"`
	Secondary      string            `json:"secondary"`
	PrimarySteps   uint64            `json:"primary_steps"`
	SecondarySteps uint64            `json:"secondary_steps"`
}

// Status takes a snapshot of the mode. The edits and summary describe the
// primary simulation.
func (m *Mode) Status() Status {
	s := Status{
		Mode:         ModeLabel,
		State:        m.state.Label(),
		Speed:        "paused",
		DesiredSpeed: m.pacer.DesiredSpeed(),
	}

	if running, ok := m.state.(*RunningState); ok {
		s.Speed = running.Speed
	}

	if m.pair == nil {
		return s
	}

	primary := m.pair.Primary()
	s.Edits = primary.Label()
	s.Summary = primary.Summary()
	s.Time = primary.Time()
	s.Primary = primary.Name()

	if secondary := m.pair.Secondary(); secondary != nil {
		s.Secondary = secondary.Name()
	}

	s.PrimarySteps, s.SecondarySteps = m.pair.StepCounts()

	return s
}

// SpeedLine formats the measured and desired speed.
func (s Status) SpeedLine() string {
	return fmt.Sprintf("Speed: %s / desired %.2fx", s.Speed, s.DesiredSpeed)
}

// Lines returns the status as display lines: the mode label, the edits, the
// summary, and the speed line. Lines that have nothing to show are skipped.
func (s Status) Lines() []string {
	lines := []string{s.Mode}

	switch s.State {
	case "setup":
		lines = append(lines, "Setting up")
		return lines
	case "quit":
		lines = append(lines, "Quit")
		return lines
	}

	if s.Edits != "" {
		lines = append(lines, s.Edits)
	}

	if s.Summary != "" {
		lines = append(lines, s.Summary)
	}

	lines = append(lines, s.SpeedLine())

	return lines
}

func (s Status) String() string {
	return strings.Join(s.Lines(), "\n")
}
