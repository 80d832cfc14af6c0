// Package driver owns the loop that delivers ticks and operator commands to
// an abtest.Mode.
//
// The mode is not safe for concurrent use. The driver goroutine is the only
// one that touches it; other goroutines go through Submit and Inspect.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sarchlab/lockstep/abtest"
	"github.com/sarchlab/lockstep/sim/hooking"
	"github.com/sarchlab/lockstep/sim/timing"
)

// ErrStopped is returned when the loop is no longer running.
var ErrStopped = errors.New("driver: stopped")

const commandBuffer = 16

type inspection struct {
	fn   func(m *abtest.Mode)
	done chan struct{}
}

// Driver runs a mode.
type Driver struct {
	mode         *abtest.Mode
	clock        timing.Clock
	tickRate     timing.Freq
	ticks        <-chan time.Time
	status       io.Writer
	logger       *log.Logger
	exitWhenDone bool

	commands    chan abtest.Command
	inspections chan inspection
	started     chan struct{}
	stopped     chan struct{}
	runOnce     sync.Once

	lastStatus   string
	doneReported bool
	quitErr      error
}

// Run evaluates the mode until it quits or ctx is cancelled. Cancelling ctx
// quits the mode. The returned error comes from releasing the simulations.
// Run can only be called once.
func (d *Driver) Run(ctx context.Context) error {
	ran := false
	d.runOnce.Do(func() { ran = true })

	if !ran {
		return ErrStopped
	}

	close(d.started)
	defer close(d.stopped)

	ticks, stop := d.tickSource()
	defer stop()

	d.tick(d.clock.Now())

	for !d.mode.IsQuit() {
		select {
		case <-ctx.Done():
			d.apply(abtest.CommandQuit)
		case now := <-ticks:
			d.tick(now)
		case c := <-d.commands:
			d.apply(c)
		case in := <-d.inspections:
			in.fn(d.mode)
			close(in.done)
		}
	}

	d.finishStatus()

	return d.quitErr
}

func (d *Driver) tickSource() (<-chan time.Time, func()) {
	if d.ticks != nil {
		return d.ticks, func() {}
	}

	t := time.NewTicker(d.tickRate.Interval())

	return t.C, t.Stop
}

// tick evaluates the mode at the instant the tick was delivered, not at the
// time it was received.
func (d *Driver) tick(now time.Time) {
	res := d.mode.OnTick(now)
	if res.Redraw {
		d.renderStatus()
	}

	d.checkDone()
}

func (d *Driver) apply(c abtest.Command) {
	err := d.mode.Apply(c)
	if err != nil {
		d.logger.Printf("%s: %v", c, err)

		if c == abtest.CommandQuit {
			d.quitErr = err
		}
	}

	d.renderStatus()
	d.checkDone()
}

func (d *Driver) checkDone() {
	pair := d.mode.Pair()
	if d.doneReported || pair == nil || pair.Secondary() == nil {
		return
	}

	if !pair.BothDone() {
		return
	}

	d.doneReported = true
	d.logger.Printf("both simulations are done at %s", pair.Primary().Time())

	if d.exitWhenDone {
		d.apply(abtest.CommandQuit)
	}
}

func (d *Driver) logTransition(ctx hooking.HookCtx) {
	if ctx.Pos != abtest.HookPosStateChange {
		return
	}

	t := ctx.Item.(abtest.Transition)
	d.logger.Printf("%s -> %s", t.From, t.To)
}

func (d *Driver) renderStatus() {
	if d.status == nil {
		return
	}

	line := strings.Join(d.mode.Status().Lines(), " | ")
	if line == d.lastStatus {
		return
	}
	d.lastStatus = line

	fmt.Fprintf(d.status, "\r\x1b[K%s", line)
}

func (d *Driver) finishStatus() {
	if d.status == nil || d.lastStatus == "" {
		return
	}

	fmt.Fprintln(d.status)
}

// Submit queues a command for the loop. It blocks while the queue is full and
// fails once the loop has stopped.
func (d *Driver) Submit(c abtest.Command) error {
	select {
	case <-d.stopped:
		return ErrStopped
	default:
	}

	select {
	case d.commands <- c:
		return nil
	case <-d.stopped:
		return ErrStopped
	}
}

// Inspect runs fn on the loop goroutine and waits for it to return. fn must
// not keep the mode or mutate it.
func (d *Driver) Inspect(fn func(m *abtest.Mode)) error {
	in := inspection{fn: fn, done: make(chan struct{})}

	select {
	case d.inspections <- in:
	case <-d.stopped:
		return ErrStopped
	}

	<-in.done

	return nil
}

// Status is a convenience wrapper that inspects the mode's status.
func (d *Driver) Status() (abtest.Status, error) {
	var s abtest.Status

	err := d.Inspect(func(m *abtest.Mode) {
		s = m.Status()
	})

	return s, err
}

// Started is closed when Run begins.
func (d *Driver) Started() <-chan struct{} {
	return d.started
}

// Stopped is closed when Run returns.
func (d *Driver) Stopped() <-chan struct{} {
	return d.stopped
}
