package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/lockstep/abtest"
	"github.com/sarchlab/lockstep/config"
	"github.com/sarchlab/lockstep/datarecording"
	"github.com/sarchlab/lockstep/driver"
	"github.com/sarchlab/lockstep/pacing"
	"github.com/sarchlab/lockstep/scenario"
	"github.com/sarchlab/lockstep/sim/timing"
	"github.com/sarchlab/lockstep/tracing"
	"github.com/spf13/cobra"
)

// addSessionFlags registers the flags shared by run and bench. They override
// the LOCKSTEP_* settings.
func addSessionFlags(c *cobra.Command) {
	f := c.Flags()
	f.Float64("speed", 1.0, "desired simulated seconds per real second")
	f.Float64("timestep", float64(timing.DefaultTimestep),
		"simulated seconds per step")
	f.Float64("tick-rate", float64(driver.DefaultTickRate),
		"evaluations per second")
	f.Bool("catch-up", false, "take several steps when the loop falls behind")
	f.Int("max-catch-up-steps", pacing.DefaultMaxCatchUpSteps,
		"bound on the steps taken in one evaluation with --catch-up")
	f.String("record", "", "record the session into <record>.sqlite3")
	f.Bool("exit-when-done", false, "quit once both simulations are done")
}

func loadConfig(c *cobra.Command) (config.Config, error) {
	envFiles, err := c.Flags().GetStringSlice("env")
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return config.Config{}, err
	}

	f := c.Flags()

	if f.Changed("speed") {
		cfg.DesiredSpeed, _ = f.GetFloat64("speed")
	}

	if f.Changed("timestep") {
		ts, _ := f.GetFloat64("timestep")
		cfg.Timestep = timing.VTimeInSec(ts)
	}

	if f.Changed("tick-rate") {
		rate, _ := f.GetFloat64("tick-rate")
		cfg.TickRate = timing.Freq(rate)
	}

	if f.Changed("catch-up") {
		catchUp, _ := f.GetBool("catch-up")
		cfg.Policy = pacing.SingleStep
		if catchUp {
			cfg.Policy = pacing.CatchUp
		}
	}

	if f.Changed("max-catch-up-steps") {
		cfg.MaxCatchUpSteps, _ = f.GetInt("max-catch-up-steps")
	}

	if f.Changed("record") {
		cfg.Record, _ = f.GetString("record")
	}

	if f.Lookup("monitor") != nil && f.Changed("monitor") {
		cfg.Monitor, _ = f.GetBool("monitor")
	}

	if f.Lookup("monitor-port") != nil && f.Changed("monitor-port") {
		cfg.MonitorPort, _ = f.GetInt("monitor-port")
	}

	if f.Lookup("keyboard") != nil && f.Changed("keyboard") {
		cfg.Keyboard, _ = f.GetBool("keyboard")
	}

	return cfg, cfg.Validate()
}

// loadSetup reads one or two scenario files. With one file, the scenario is
// compared against its own edits.
func loadSetup(args []string, cfg config.Config) (*scenario.Setup, error) {
	primary, err := scenario.LoadFile(args[0])
	if err != nil {
		return nil, err
	}

	var secondary *scenario.Scenario
	if len(args) > 1 {
		secondary, err = scenario.LoadFile(args[1])
		if err != nil {
			return nil, err
		}
	}

	return scenario.NewSetup(primary, secondary, cfg.Timestep)
}

type session struct {
	mode     *abtest.Mode
	driver   *driver.Driver
	tracer   *tracing.DBTracer
	recorder datarecording.DataRecorder
}

func newSession(
	c *cobra.Command,
	args []string,
	cfg config.Config,
	status io.Writer,
	logger *log.Logger,
) (*session, error) {
	setup, err := loadSetup(args, cfg)
	if err != nil {
		return nil, err
	}

	clock := timing.RealClock{}
	s := &session{}

	s.mode = abtest.MakeBuilder().
		WithClock(clock).
		WithTimestep(cfg.Timestep).
		WithDesiredSpeed(cfg.DesiredSpeed).
		WithPolicy(cfg.Policy).
		WithMaxCatchUpSteps(cfg.MaxCatchUpSteps).
		Build(setup)

	if cfg.Record != "" {
		s.recorder, err = datarecording.Open(cfg.Record)
		if err != nil {
			return nil, err
		}

		s.tracer = tracing.NewDBTracer(clock, s.recorder)
		s.mode.AcceptHook(s.tracer)
	}

	exitWhenDone, _ := c.Flags().GetBool("exit-when-done")

	s.driver = driver.MakeBuilder().
		WithClock(clock).
		WithTickRate(cfg.TickRate).
		WithStatusWriter(status).
		WithLogger(logger).
		WithExitWhenDone(exitWhenDone).
		Build(s.mode)

	return s, nil
}

// close flushes the recording, if any.
func (s *session) close() error {
	if s.recorder == nil {
		return nil
	}

	s.tracer.Terminate()

	err := s.recorder.Close()
	if err != nil {
		return fmt.Errorf("closing recording: %w", err)
	}

	return nil
}
