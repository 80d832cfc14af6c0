package timing

import (
	"log"
	"math"
	"time"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
)

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Interval returns the wall-clock time between two consecutive ticks.
func (f Freq) Interval() time.Duration {
	return f.Period().Duration()
}

// Cycle converts a duration to the number of ticks that fit in it.
func (f Freq) Cycle(d time.Duration) uint64 {
	return uint64(math.Floor(d.Seconds() * float64(f)))
}
