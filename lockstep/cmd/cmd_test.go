package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/sarchlab/lockstep/abtest"
	"github.com/sarchlab/lockstep/datarecording"
	"github.com/sarchlab/lockstep/pacing"
	"github.com/sarchlab/lockstep/scenario"
	"github.com/sarchlab/lockstep/sim/timing"
	"github.com/sarchlab/lockstep/tracing"
)

const downtown = "../../scenario/testdata/downtown.yaml"

func newTestCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().StringSlice("env", nil, "")
	addSessionFlags(c)

	return c
}

var _ = Describe("Config flags", func() {
	It("should use the defaults without flags", func() {
		c := newTestCommand()
		Expect(c.ParseFlags(nil)).To(Succeed())

		cfg, err := loadConfig(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Policy).To(Equal(pacing.SingleStep))
		Expect(cfg.Timestep).To(Equal(timing.DefaultTimestep))
	})

	It("should let flags override the environment", func() {
		GinkgoT().Setenv("LOCKSTEP_DESIRED_SPEED", "3")
		GinkgoT().Setenv("LOCKSTEP_RECORD", "from_env")

		c := newTestCommand()
		Expect(c.ParseFlags([]string{
			"--speed", "2.5", "--catch-up", "--max-catch-up-steps", "3",
		})).To(Succeed())

		cfg, err := loadConfig(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.DesiredSpeed).To(Equal(2.5))
		Expect(cfg.Policy).To(Equal(pacing.CatchUp))
		Expect(cfg.MaxCatchUpSteps).To(Equal(3))
		Expect(cfg.Record).To(Equal("from_env"))
	})

	It("should reject invalid flag values", func() {
		c := newTestCommand()
		Expect(c.ParseFlags([]string{"--speed=-1"})).To(Succeed())

		_, err := loadConfig(c)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Bench", func() {
	It("should run both simulations and report", func() {
		c := newTestCommand()
		Expect(c.ParseFlags([]string{"--speed", "50"})).To(Succeed())

		cfg, err := loadConfig(c)
		Expect(err).NotTo(HaveOccurred())

		s, err := newSession(c, []string{downtown}, cfg, nil, nil)
		Expect(err).NotTo(HaveOccurred())

		report := &benchReport{}
		s.mode.AcceptHook(report)

		ctx, cancel := context.WithTimeout(context.Background(),
			300*time.Millisecond)
		defer cancel()

		Expect(s.driver.Submit(abtest.CommandRunPause)).To(Succeed())
		Expect(s.driver.Run(ctx)).To(Succeed())
		Expect(s.close()).To(Succeed())

		Expect(report.steps[0]).To(BeNumerically(">", 0))
		Expect(report.steps[0]).To(Equal(report.steps[1]))

		out := &bytes.Buffer{}
		report.print(out, cfg.DesiredSpeed, 300*time.Millisecond)
		Expect(out.String()).To(ContainSubstring("desired 50.00x"))
	})
})

var _ = Describe("Report", func() {
	It("should summarize recorded sessions", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		recorder := datarecording.NewWithDB(db)
		clock := timing.NewManualClock(time.Unix(0, 0))
		tracer := tracing.NewDBTracer(clock, recorder)

		s, err := scenario.LoadFile(downtown)
		Expect(err).NotTo(HaveOccurred())
		setup, err := scenario.NewSetup(s, nil, timing.DefaultTimestep)
		Expect(err).NotTo(HaveOccurred())

		mode := abtest.MakeBuilder().WithClock(clock).Build(setup)
		mode.AcceptHook(tracer)
		mode.OnTick(clock.Now())

		for i := 0; i < 4; i++ {
			mode.CmdSingleStep()
		}
		mode.CmdSwap()
		Expect(mode.CmdQuit()).To(Succeed())
		tracer.Terminate()

		out := &bytes.Buffer{}
		err = writeReport(context.Background(),
			datarecording.NewReaderWithDB(db), out)
		Expect(err).NotTo(HaveOccurred())

		Expect(out.String()).To(ContainSubstring(tracer.Session()))
		Expect(out.String()).To(MatchRegexp(`A \(untitled edits\)\s+B \(bus lanes\)\s+4\s+1\s+\.\.\.`))
	})

	It("should list sessions that never stepped", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		recorder := datarecording.NewWithDB(db)
		clock := timing.NewManualClock(time.Unix(0, 0))
		tracer := tracing.NewDBTracer(clock, recorder)

		s, err := scenario.LoadFile(downtown)
		Expect(err).NotTo(HaveOccurred())
		setup, err := scenario.NewSetup(s, nil, timing.DefaultTimestep)
		Expect(err).NotTo(HaveOccurred())

		mode := abtest.MakeBuilder().WithClock(clock).Build(setup)
		mode.AcceptHook(tracer)
		mode.OnTick(clock.Now())
		mode.CmdSwap()
		Expect(mode.CmdQuit()).To(Succeed())
		tracer.Terminate()

		out := &bytes.Buffer{}
		err = writeReport(context.Background(),
			datarecording.NewReaderWithDB(db), out)
		Expect(err).NotTo(HaveOccurred())

		Expect(out.String()).To(MatchRegexp(`A \(untitled edits\)\s+B \(bus lanes\)\s+0\s+1\s+\.\.\.`))
	})
})
