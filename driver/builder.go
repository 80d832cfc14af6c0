package driver

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/sarchlab/lockstep/abtest"
	"github.com/sarchlab/lockstep/sim/hooking"
	"github.com/sarchlab/lockstep/sim/timing"
)

// DefaultTickRate is how often the mode is evaluated.
const DefaultTickRate = 30 * timing.Hz

// Builder can build drivers.
type Builder struct {
	clock        timing.Clock
	tickRate     timing.Freq
	ticks        <-chan time.Time
	status       io.Writer
	logger       *log.Logger
	exitWhenDone bool
}

// MakeBuilder creates a builder with the default settings.
func MakeBuilder() Builder {
	return Builder{
		clock:    timing.RealClock{},
		tickRate: DefaultTickRate,
		logger:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

// WithClock sets the clock the mode reads. The mode must be built with the
// same clock.
func (b Builder) WithClock(c timing.Clock) Builder {
	b.clock = c
	return b
}

// WithTickRate sets how often the mode is evaluated.
func (b Builder) WithTickRate(f timing.Freq) Builder {
	b.tickRate = f
	return b
}

// WithTicks replaces the internal ticker. Each receive triggers one tick at
// the received time.
func (b Builder) WithTicks(ticks <-chan time.Time) Builder {
	b.ticks = ticks
	return b
}

// WithStatusWriter sets where the status line is rendered. Nil disables it.
func (b Builder) WithStatusWriter(w io.Writer) Builder {
	b.status = w
	return b
}

// WithLogger sets the logger for transitions and notices.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithExitWhenDone makes the driver quit once both simulations are done.
func (b Builder) WithExitWhenDone(exit bool) Builder {
	b.exitWhenDone = exit
	return b
}

// Build creates a driver around the mode.
func (b Builder) Build(mode *abtest.Mode) *Driver {
	if mode == nil {
		panic("driver: mode is nil")
	}

	if b.ticks == nil && !(b.tickRate > 0) {
		panic("driver: tick rate must be positive")
	}

	if b.logger == nil {
		b.logger = log.New(io.Discard, "", 0)
	}

	d := &Driver{
		mode:         mode,
		clock:        b.clock,
		tickRate:     b.tickRate,
		ticks:        b.ticks,
		status:       b.status,
		logger:       b.logger,
		exitWhenDone: b.exitWhenDone,
		commands:     make(chan abtest.Command, commandBuffer),
		inspections:  make(chan inspection),
		started:      make(chan struct{}),
		stopped:      make(chan struct{}),
	}

	mode.AcceptHook(hooking.HookFunc(d.logTransition))

	return d
}
