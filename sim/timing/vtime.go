// Package timing defines simulated time, tick rates, and the wall clock the
// driver paces against.
package timing

import (
	"fmt"
	"math"
	"time"
)

// VTimeInSec is a simulated time, in seconds.
type VTimeInSec float64

// DefaultTimestep is the simulated time advanced by one step.
const DefaultTimestep VTimeInSec = 0.1

// TimeTeller can be used to get the current simulated time.
type TimeTeller interface {
	Time() VTimeInSec
}

// Seconds returns the time as a plain float.
func (t VTimeInSec) Seconds() float64 {
	return float64(t)
}

// Duration converts a simulated time span to a time.Duration, rounded to the
// nearest nanosecond.
func (t VTimeInSec) Duration() time.Duration {
	return time.Duration(math.Round(float64(t) * float64(time.Second)))
}

// String formats the time as H:MM:SS.S.
func (t VTimeInSec) String() string {
	if math.IsNaN(float64(t)) {
		return "NaN"
	}

	sign := ""
	tenths := int64(math.Round(float64(t) * 10))
	if tenths < 0 {
		sign = "-"
		tenths = -tenths
	}

	hours := tenths / 36000
	minutes := tenths / 600 % 60
	seconds := tenths / 10 % 60

	return fmt.Sprintf("%s%d:%02d:%02d.%d",
		sign, hours, minutes, seconds, tenths%10)
}
