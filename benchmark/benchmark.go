// Package benchmark measures how fast a simulation advances compared with
// the wall clock.
package benchmark

import (
	"fmt"
	"time"

	"github.com/sarchlab/lockstep/sim/timing"
)

// Placeholder is shown instead of a speed until a window has completed.
const Placeholder = "..."

// Window is the amount of real time a measurement needs to be meaningful.
const Window = time.Second

// A Benchmark is a measurement window. It remembers when the window started,
// both in real time and in simulated time.
type Benchmark struct {
	realStart time.Time
	simStart  timing.VTimeInSec
}

// Start opens a new measurement window at the given instant and simulated
// time.
func Start(now time.Time, simTime timing.VTimeInSec) *Benchmark {
	return &Benchmark{
		realStart: now,
		simStart:  simTime,
	}
}

// StartedAt returns the real instant the window opened.
func (b *Benchmark) StartedAt() time.Time {
	return b.realStart
}

// SimStart returns the simulated time the window opened at.
func (b *Benchmark) SimStart() timing.VTimeInSec {
	return b.simStart
}

// Elapsed returns the real time since the window opened.
func (b *Benchmark) Elapsed(now time.Time) time.Duration {
	return now.Sub(b.realStart)
}

// HasRealTimePassed returns true if at least d of real time has elapsed
// since the window opened.
func (b *Benchmark) HasRealTimePassed(now time.Time, d time.Duration) bool {
	return b.Elapsed(now) >= d
}

// Speed returns the simulated seconds advanced per real second since the
// window opened. It returns 0 if no real time has elapsed.
func (b *Benchmark) Speed(now time.Time, simTime timing.VTimeInSec) float64 {
	realSeconds := b.Elapsed(now).Seconds()
	if realSeconds <= 0 {
		return 0
	}

	return float64(simTime-b.simStart) / realSeconds
}

// MeasureSpeed formats the speed as a multiplier such as "4.20x". If reset is
// true, the window restarts at now and simTime.
func (b *Benchmark) MeasureSpeed(
	now time.Time,
	simTime timing.VTimeInSec,
	reset bool,
) string {
	s := FormatSpeed(b.Speed(now, simTime))

	if reset {
		b.realStart = now
		b.simStart = simTime
	}

	return s
}

// FormatSpeed formats a speed ratio the same way MeasureSpeed does.
func FormatSpeed(speed float64) string {
	return fmt.Sprintf("%.2fx", speed)
}
