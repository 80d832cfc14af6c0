package monitoring

import (
	"github.com/sarchlab/lockstep/sim/dual"
)

// Progresser is implemented by simulations that can tell how much of their
// work is done.
type Progresser interface {
	Progress() (finished, inProgress, total uint64)
}

// A ProgressBar is a tracker of the progress of one simulation.
type ProgressBar struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slot       string `json:"slot"`
	Steps      uint64 `json:"steps"`
	Total      uint64 `json:"total"`
	Finished   uint64 `json:"finished"`
	InProgress uint64 `json:"in_progress"`
	Done       bool   `json:"done"`
}

// progressBars describes both simulations of the pair, primary first. A
// simulation that is not a Progresser only reports its steps.
func progressBars(pair *dual.Pair) []*ProgressBar {
	if pair == nil {
		return nil
	}

	steps := [2]uint64{}
	steps[dual.Primary], steps[dual.Secondary] = pair.StepCounts()

	var bars []*ProgressBar

	for _, slot := range []dual.Slot{dual.Primary, dual.Secondary} {
		h := pair.Handle(slot)
		if h == nil {
			continue
		}

		bar := &ProgressBar{
			ID:    h.Name(),
			Name:  h.String(),
			Slot:  slot.String(),
			Steps: steps[slot],
			Done:  h.IsDone(),
		}

		if p, ok := h.Simulation().(Progresser); ok {
			bar.Finished, bar.InProgress, bar.Total = p.Progress()
		}

		bars = append(bars, bar)
	}

	return bars
}
