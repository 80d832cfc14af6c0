package timing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 10 * Hz
		Expect(f.Period()).To(BeNumerically("~", 0.1, 1e-12))
	})

	It("should get the wall-clock interval", func() {
		var f = 30 * Hz
		Expect(f.Interval()).To(Equal(33333333 * time.Nanosecond))
	})

	It("should count whole ticks in a duration", func() {
		var f = 1 * KHz
		Expect(f.Cycle(2500 * time.Microsecond)).To(Equal(uint64(2)))
	})

	It("should panic on zero frequency", func() {
		var f Freq
		Expect(func() { f.Period() }).To(Panic())
	})
})

var _ = Describe("VTimeInSec", func() {
	It("should convert to a duration", func() {
		Expect(DefaultTimestep.Duration()).To(Equal(100 * time.Millisecond))
	})

	It("should format as hours, minutes and tenths", func() {
		Expect(VTimeInSec(0).String()).To(Equal("0:00:00.0"))
		Expect(VTimeInSec(62.3).String()).To(Equal("0:01:02.3"))
		Expect(VTimeInSec(3725.2).String()).To(Equal("1:02:05.2"))
		Expect(VTimeInSec(-1.5).String()).To(Equal("-0:00:01.5"))
	})
})

var _ = Describe("ManualClock", func() {
	var (
		start time.Time
		clock *ManualClock
	)

	BeforeEach(func() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		clock = NewManualClock(start)
	})

	It("should only move when advanced", func() {
		Expect(clock.Now()).To(Equal(start))

		clock.Advance(60 * time.Millisecond)

		Expect(clock.Now().Sub(start)).To(Equal(60 * time.Millisecond))
	})

	It("should refuse to go backward", func() {
		Expect(func() { clock.Advance(-time.Second) }).To(Panic())
		Expect(func() { clock.Set(start.Add(-time.Second)) }).To(Panic())
	})

	It("should satisfy Clock", func() {
		var c Clock = clock
		Expect(c.Now()).To(Equal(start))

		c = RealClock{}
		Expect(c.Now()).ToNot(BeZero())
	})
})
