// Package tracing records what happens during a session.
package tracing

import (
	"fmt"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/lockstep/abtest"
	"github.com/sarchlab/lockstep/datarecording"
	"github.com/sarchlab/lockstep/sim/dual"
	"github.com/sarchlab/lockstep/sim/hooking"
	"github.com/sarchlab/lockstep/sim/simulation"
	"github.com/sarchlab/lockstep/sim/timing"
	"github.com/tebeka/atexit"
)

// Table names written by a DBTracer.
const (
	SessionTable    = "lockstep_sessions"
	StepTable       = "lockstep_steps"
	TransitionTable = "lockstep_transitions"
	SpeedTable      = "lockstep_speed"
	SwapTable       = "lockstep_swaps"
)

// SessionEntry is a row of SessionTable.
type SessionEntry struct {
	Session   string
	StartedAt float64
	Primary   string
	Secondary string
}

// StepEntry is a row of StepTable. Slot is the role the simulation held when
// it was stepped.
type StepEntry struct {
	Session    string
	Slot       string
	Simulation string
	Edits      string
	Count      uint64
	SimTime    float64
}

// TransitionEntry is a row of TransitionTable.
type TransitionEntry struct {
	Session string
	At      float64
	From    string
	To      string
}

// SpeedEntry is a row of SpeedTable.
type SpeedEntry struct {
	Session  string
	At       float64
	SimTime  float64
	Measured float64
	Desired  float64
}

// SwapEntry is a row of SwapTable.
type SwapEntry struct {
	Session string
	At      float64
	Primary string
}

// DBTracer is a hook that stores steps, state transitions, swaps and speed
// measurements into a DataRecorder.
type DBTracer struct {
	mu      sync.Mutex
	session string
	clock   timing.Clock
	backend datarecording.DataRecorder

	sessionWritten bool
	terminated     bool
}

// NewDBTracer creates the tables and returns a tracer with a fresh session
// id. The recorder is flushed at exit.
func NewDBTracer(
	clock timing.Clock,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(SessionTable, SessionEntry{})
	dataRecorder.CreateTable(StepTable, StepEntry{})
	dataRecorder.CreateTable(TransitionTable, TransitionEntry{})
	dataRecorder.CreateTable(SpeedTable, SpeedEntry{})
	dataRecorder.CreateTable(SwapTable, SwapEntry{})

	t := &DBTracer{
		session: xid.New().String(),
		clock:   clock,
		backend: dataRecorder,
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// Session returns the id stamped on every row.
func (t *DBTracer) Session() string {
	return t.session
}

// Func records the hook if it is one the tracer understands.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	switch ctx.Pos {
	case dual.HookPosAfterStep:
		t.recordStep(ctx)
	case dual.HookPosSwap:
		t.recordSwap(ctx)
	case abtest.HookPosStateChange:
		t.recordTransition(ctx)
	case abtest.HookPosSpeedMeasured:
		t.recordSpeed(ctx)
	}
}

func (t *DBTracer) recordStep(ctx hooking.HookCtx) {
	h := ctx.Item.(*simulation.Handle)
	detail := ctx.Detail.(dual.StepDetail)

	if pair, ok := ctx.Domain.(*dual.Pair); ok {
		t.recordSession(pair, unixSeconds(t.clock))
	}

	t.backend.InsertData(StepTable, StepEntry{
		Session:    t.session,
		Slot:       detail.Slot.String(),
		Simulation: h.Name(),
		Edits:      h.Label(),
		Count:      detail.Count,
		SimTime:    h.Time().Seconds(),
	})
}

// recordSession writes the session row once. It is normally written when the
// mode first becomes paused; a tracer attached to a bare pair writes it at the
// first step instead.
func (t *DBTracer) recordSession(pair *dual.Pair, at float64) {
	if t.sessionWritten {
		return
	}
	t.sessionWritten = true

	entry := SessionEntry{
		Session:   t.session,
		StartedAt: at,
		Primary:   pair.Primary().String(),
	}
	if s := pair.Secondary(); s != nil {
		entry.Secondary = s.String()
	}

	t.backend.InsertData(SessionTable, entry)
}

func (t *DBTracer) recordSwap(ctx hooking.HookCtx) {
	h := ctx.Item.(*simulation.Handle)

	t.backend.InsertData(SwapTable, SwapEntry{
		Session: t.session,
		At:      unixSeconds(t.clock),
		Primary: h.Name(),
	})
}

func (t *DBTracer) recordTransition(ctx hooking.HookCtx) {
	tr := ctx.Item.(abtest.Transition)
	at := float64(tr.At.UnixNano()) / 1e9

	if mode, ok := ctx.Domain.(*abtest.Mode); ok {
		if _, paused := mode.State().(*abtest.PausedState); paused &&
			mode.Pair() != nil {
			t.recordSession(mode.Pair(), at)
		}
	}

	t.backend.InsertData(TransitionTable, TransitionEntry{
		Session: t.session,
		At:      at,
		From:    tr.From,
		To:      tr.To,
	})
}

func (t *DBTracer) recordSpeed(ctx hooking.HookCtx) {
	s := ctx.Item.(abtest.SpeedSample)

	t.backend.InsertData(SpeedTable, SpeedEntry{
		Session:  t.session,
		At:       float64(s.At.UnixNano()) / 1e9,
		SimTime:  s.SimTime.Seconds(),
		Measured: s.Measured,
		Desired:  s.Desired,
	})
}

// Terminate flushes the recorder. Hooks arriving afterwards are dropped.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}
	t.terminated = true

	t.backend.Flush()
}

// String names the tracer in logs.
func (t *DBTracer) String() string {
	return fmt.Sprintf("DBTracer(%s)", t.session)
}

func unixSeconds(c timing.Clock) float64 {
	return float64(c.Now().UnixNano()) / 1e9
}
