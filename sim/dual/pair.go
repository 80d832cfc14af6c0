// Package dual keeps two simulation instances stepping in lockstep.
package dual

import (
	"errors"
	"fmt"

	"github.com/sarchlab/lockstep/sim/hooking"
	"github.com/sarchlab/lockstep/sim/simulation"
)

// Errors raised when the pair is stepped before it is complete. Both are
// programming errors and are delivered through panic.
var (
	ErrPrimaryMissing   = errors.New("dual: primary simulation missing")
	ErrSecondaryMissing = errors.New("dual: secondary simulation missing")
)

// A list of hook poses raised by a Pair.
var (
	HookPosBeforeStep = &hooking.HookPos{Name: "BeforeStep"}
	HookPosAfterStep  = &hooking.HookPos{Name: "AfterStep"}
	HookPosSwap       = &hooking.HookPos{Name: "Swap"}
)

// Slot names one of the two labels of a pair.
type Slot int

// The two labels.
const (
	Primary Slot = iota
	Secondary
)

func (s Slot) String() string {
	switch s {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// ParseSlot converts "primary" or "secondary" into a Slot.
func ParseSlot(s string) (Slot, error) {
	switch s {
	case "primary":
		return Primary, nil
	case "secondary":
		return Secondary, nil
	default:
		return 0, fmt.Errorf("dual: unknown slot %q", s)
	}
}

// StepDetail is attached to the step hooks.
type StepDetail struct {
	Slot Slot

	// Count is the number of times the instance has been stepped, including
	// the current step once it completes.
	Count uint64
}

// A Pair owns two simulation handles. The handles are stored in two fixed
// slots. The primary label is an index into those slots, so swapping never
// moves a handle.
type Pair struct {
	hooking.HookableBase

	handles [2]*simulation.Handle
	steps   [2]uint64
	primary int
}

// NewPair creates a pair. The secondary may be nil while setup is still
// choosing it, but the pair cannot step until it is attached.
func NewPair(primary, secondary *simulation.Handle) *Pair {
	return &Pair{
		handles: [2]*simulation.Handle{primary, secondary},
	}
}

// AttachSecondary fills an empty secondary slot.
func (p *Pair) AttachSecondary(h *simulation.Handle) {
	idx := 1 - p.primary
	if p.handles[idx] != nil {
		panic("dual: secondary already attached")
	}

	p.handles[idx] = h
}

// Primary returns the handle currently labeled primary.
func (p *Pair) Primary() *simulation.Handle {
	return p.handles[p.primary]
}

// Secondary returns the handle currently labeled secondary.
func (p *Pair) Secondary() *simulation.Handle {
	return p.handles[1-p.primary]
}

// Handle returns the handle under the given label.
func (p *Pair) Handle(s Slot) *simulation.Handle {
	return p.handles[p.index(s)]
}

func (p *Pair) index(s Slot) int {
	switch s {
	case Primary:
		return p.primary
	case Secondary:
		return 1 - p.primary
	default:
		panic(fmt.Sprintf("dual: invalid slot %d", int(s)))
	}
}

// StepBoth advances the primary and then the secondary by one step each.
//
// If either side is missing, StepBoth panics before touching the other side,
// so the two step counts never diverge.
func (p *Pair) StepBoth() {
	p.mustBeComplete()

	p.step(Primary)
	p.step(Secondary)
}

func (p *Pair) mustBeComplete() {
	if p.Primary() == nil {
		panic(ErrPrimaryMissing)
	}

	if p.Secondary() == nil {
		panic(ErrSecondaryMissing)
	}
}

func (p *Pair) step(s Slot) {
	idx := p.index(s)
	h := p.handles[idx]

	ctx := hooking.HookCtx{
		Domain: p,
		Pos:    HookPosBeforeStep,
		Item:   h,
		Detail: StepDetail{Slot: s, Count: p.steps[idx]},
	}
	p.InvokeHook(ctx)

	h.Step()
	p.steps[idx]++

	ctx.Pos = HookPosAfterStep
	ctx.Detail = StepDetail{Slot: s, Count: p.steps[idx]}
	p.InvokeHook(ctx)
}

// Swap exchanges the primary and secondary labels. Neither simulation is
// touched.
func (p *Pair) Swap() {
	p.primary = 1 - p.primary

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosSwap,
		Item:   p.Primary(),
	})
}

// StepCounts returns how many times the current primary and secondary have
// been stepped. The counts follow the instances across swaps.
func (p *Pair) StepCounts() (primary, secondary uint64) {
	return p.steps[p.primary], p.steps[1-p.primary]
}

// BothDone returns true if both simulations report that they are done.
func (p *Pair) BothDone() bool {
	p.mustBeComplete()

	return p.Primary().IsDone() && p.Secondary().IsDone()
}

// Close closes both handles and empties the pair.
func (p *Pair) Close() error {
	var errs []error

	for i, h := range p.handles {
		if h == nil {
			continue
		}

		errs = append(errs, h.Close())
		p.handles[i] = nil
	}

	return errors.Join(errs...)
}
