package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/sarchlab/lockstep/abtest"
	"github.com/sarchlab/lockstep/benchmark"
	"github.com/sarchlab/lockstep/sim/dual"
	"github.com/sarchlab/lockstep/sim/hooking"
	"github.com/sarchlab/lockstep/sim/simulation"
	"github.com/sarchlab/lockstep/sim/timing"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench <scenario.yaml> [other.yaml]",
	Short: "Run both simulations headless and report the achieved speed.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	addSessionFlags(benchCmd)

	benchCmd.Flags().Duration("duration", 10*time.Second,
		"wall-clock time to run for")
}

// benchReport collects what a bench prints from the hooks of the mode.
type benchReport struct {
	steps    [2]uint64
	simTime  timing.VTimeInSec
	samples  int
	measured float64
}

func (r *benchReport) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case dual.HookPosAfterStep:
		detail := ctx.Detail.(dual.StepDetail)
		r.steps[detail.Slot] = detail.Count

		if detail.Slot == dual.Primary {
			r.simTime = ctx.Item.(*simulation.Handle).Time()
		}
	case abtest.HookPosSpeedMeasured:
		r.samples++
		r.measured = ctx.Item.(abtest.SpeedSample).Measured
	}
}

func (r *benchReport) print(w io.Writer, desired float64, elapsed time.Duration) {
	fmt.Fprintf(w, "achieved %s (desired %s) over %s\n",
		benchmark.FormatSpeed(r.simTime.Seconds()/elapsed.Seconds()),
		benchmark.FormatSpeed(desired),
		elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "simulated %s, %d steps primary, %d steps secondary\n",
		r.simTime, r.steps[dual.Primary], r.steps[dual.Secondary])

	if r.samples > 0 {
		fmt.Fprintf(w, "last measured speed %s (%d samples)\n",
			benchmark.FormatSpeed(r.measured), r.samples)
	}
}

func runBench(c *cobra.Command, args []string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	duration, _ := c.Flags().GetDuration("duration")
	logger := log.New(os.Stderr, "lockstep: ", log.LstdFlags)

	s, err := newSession(c, args, cfg, nil, logger)
	if err != nil {
		return err
	}

	report := &benchReport{}
	s.mode.AcceptHook(report)

	ctx, cancel := context.WithTimeout(c.Context(), duration)
	defer cancel()

	err = s.driver.Submit(abtest.CommandRunPause)
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.driver.Run(ctx)
	elapsed := time.Since(start)

	report.print(os.Stdout, cfg.DesiredSpeed, elapsed)

	return errors.Join(err, s.close())
}
