package tracing

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/lockstep/abtest"
	"github.com/sarchlab/lockstep/datarecording"
	"github.com/sarchlab/lockstep/sim/dual"
	"github.com/sarchlab/lockstep/sim/hooking"
	"github.com/sarchlab/lockstep/sim/simulation"
	"github.com/sarchlab/lockstep/sim/timing"
)

type stubMap struct{ name string }

func (m stubMap) EditsName() string { return m.name }

type stubSim struct {
	now timing.VTimeInSec
}

func (s *stubSim) Time() timing.VTimeInSec { return s.now }
func (s *stubSim) Step(_ simulation.Map)   { s.now += timing.DefaultTimestep }
func (s *stubSim) IsDone() bool            { return false }
func (s *stubSim) Summary() string         { return "stub" }

type readySetup struct {
	primary, secondary *simulation.Handle
}

func (s readySetup) Poll() (*simulation.Handle, *simulation.Handle, bool) {
	return s.primary, s.secondary, true
}

func newHandles() (*simulation.Handle, *simulation.Handle) {
	a := simulation.NewHandle("baseline", &stubSim{}, stubMap{"untitled edits"})
	b := simulation.NewHandle("edited", &stubSim{}, stubMap{"bus lanes"})

	return a, b
}

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		clock    *timing.ManualClock
		tracer   *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)
		clock = timing.NewManualClock(time.Unix(1000, 0))

		for _, name := range []string{
			SessionTable, StepTable, TransitionTable, SpeedTable, SwapTable,
		} {
			backend.EXPECT().CreateTable(name, gomock.Any())
		}

		tracer = NewDBTracer(clock, backend)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should give every tracer its own session", func() {
		other := NewMockDataRecorder(mockCtrl)
		other.EXPECT().CreateTable(gomock.Any(), gomock.Any()).Times(5)

		Expect(tracer.Session()).NotTo(BeEmpty())
		Expect(NewDBTracer(clock, other).Session()).
			NotTo(Equal(tracer.Session()))
	})

	It("should record steps with the slot held at the time", func() {
		a, b := newHandles()
		pair := dual.NewPair(a, b)
		pair.AcceptHook(tracer)

		var steps []StepEntry

		backend.EXPECT().InsertData(SessionTable, SessionEntry{
			Session:   tracer.Session(),
			StartedAt: 1000,
			Primary:   "baseline (untitled edits)",
			Secondary: "edited (bus lanes)",
		})
		backend.EXPECT().InsertData(StepTable, gomock.Any()).
			Do(func(_ string, entry any) {
				steps = append(steps, entry.(StepEntry))
			}).Times(4)
		backend.EXPECT().InsertData(SwapTable, SwapEntry{
			Session: tracer.Session(),
			At:      1000,
			Primary: "edited",
		})

		pair.StepBoth()
		pair.Swap()
		pair.StepBoth()

		Expect(steps).To(HaveLen(4))
		Expect(steps[0].Slot).To(Equal("primary"))
		Expect(steps[0].Simulation).To(Equal("baseline"))
		Expect(steps[0].Count).To(Equal(uint64(1)))
		Expect(steps[1].Slot).To(Equal("secondary"))
		Expect(steps[1].Edits).To(Equal("bus lanes"))
		Expect(steps[2].Slot).To(Equal("primary"))
		Expect(steps[2].Simulation).To(Equal("edited"))
		Expect(steps[2].Count).To(Equal(uint64(2)))
		Expect(steps[3].Simulation).To(Equal("baseline"))
	})

	It("should write the session when the mode becomes paused", func() {
		a, b := newHandles()
		mode := abtest.MakeBuilder().
			WithClock(clock).
			Build(readySetup{primary: a, secondary: b})
		mode.AcceptHook(tracer)

		gomock.InOrder(
			backend.EXPECT().InsertData(SessionTable, SessionEntry{
				Session:   tracer.Session(),
				StartedAt: 1003,
				Primary:   "baseline (untitled edits)",
				Secondary: "edited (bus lanes)",
			}),
			backend.EXPECT().InsertData(TransitionTable, TransitionEntry{
				Session: tracer.Session(),
				At:      1003,
				From:    "setup",
				To:      "paused",
			}),
			backend.EXPECT().InsertData(SwapTable, SwapEntry{
				Session: tracer.Session(),
				At:      1000,
				Primary: "edited",
			}),
			backend.EXPECT().InsertData(StepTable, gomock.Any()).Times(2),
		)

		mode.OnTick(time.Unix(1003, 0))
		mode.CmdSwap()
		mode.CmdSingleStep()
	})

	It("should ignore positions it does not know", func() {
		tracer.Func(hooking.HookCtx{Pos: dual.HookPosBeforeStep})
		tracer.Func(hooking.HookCtx{Pos: &hooking.HookPos{Name: "Other"}})
	})

	It("should flush once on terminate and drop later hooks", func() {
		backend.EXPECT().Flush().Times(1)

		tracer.Terminate()
		tracer.Terminate()

		tracer.Func(hooking.HookCtx{
			Pos:  abtest.HookPosStateChange,
			Item: abtest.Transition{From: "paused", To: "running"},
		})
	})

	It("should record transitions and speed samples", func() {
		at := time.Unix(1002, 500_000_000)

		backend.EXPECT().InsertData(TransitionTable, TransitionEntry{
			Session: tracer.Session(),
			At:      1002.5,
			From:    "paused",
			To:      "running",
		})
		backend.EXPECT().InsertData(SpeedTable, SpeedEntry{
			Session:  tracer.Session(),
			At:       1002.5,
			SimTime:  1.5,
			Measured: 1.5,
			Desired:  1,
		})

		tracer.Func(hooking.HookCtx{
			Pos:  abtest.HookPosStateChange,
			Item: abtest.Transition{At: at, From: "paused", To: "running"},
		})
		tracer.Func(hooking.HookCtx{
			Pos: abtest.HookPosSpeedMeasured,
			Item: abtest.SpeedSample{
				At: at, SimTime: 1.5, Measured: 1.5, Desired: 1,
			},
		})
	})
})

var _ = Describe("DBTracer with a sqlite recorder", func() {
	It("should record a running session of a mode", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		recorder := datarecording.NewWithDB(db)
		clock := timing.NewManualClock(time.Unix(0, 0))
		tracer := NewDBTracer(clock, recorder)

		a, b := newHandles()
		mode := abtest.MakeBuilder().
			WithClock(clock).
			Build(readySetup{primary: a, secondary: b})
		mode.AcceptHook(tracer)

		mode.OnTick(clock.Now())
		mode.CmdRunPause()

		for i := 0; i < 3; i++ {
			clock.Advance(150 * time.Millisecond)
			mode.OnTick(clock.Now())
		}

		Expect(mode.CmdQuit()).To(Succeed())
		tracer.Terminate()

		ctx := context.Background()
		reader := datarecording.NewReaderWithDB(db)

		steps, err := reader.Count(ctx, StepTable, datarecording.Filter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(Equal(6))

		transitions, err := datarecording.Read[TransitionEntry](
			ctx, reader, TransitionTable,
			datarecording.Filter{OrderBy: "rowid"})
		Expect(err).NotTo(HaveOccurred())
		Expect(transitions).To(HaveLen(3))
		Expect(transitions[0].To).To(Equal("paused"))
		Expect(transitions[2].To).To(Equal("quit"))

		sessions, err := datarecording.Read[SessionEntry](
			ctx, reader, SessionTable, datarecording.Filter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions).To(HaveLen(1))
		Expect(sessions[0].Primary).To(Equal("baseline (untitled edits)"))
		Expect(sessions[0].Secondary).To(Equal("edited (bus lanes)"))
	})

	It("should store swaps and sessions that never step", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		recorder := datarecording.NewWithDB(db)
		clock := timing.NewManualClock(time.Unix(0, 0))
		tracer := NewDBTracer(clock, recorder)

		a, b := newHandles()
		mode := abtest.MakeBuilder().
			WithClock(clock).
			Build(readySetup{primary: a, secondary: b})
		mode.AcceptHook(tracer)

		mode.OnTick(clock.Now())
		mode.CmdSwap()
		Expect(mode.CmdQuit()).To(Succeed())
		tracer.Terminate()

		ctx := context.Background()
		reader := datarecording.NewReaderWithDB(db)

		sessions, err := datarecording.Read[SessionEntry](
			ctx, reader, SessionTable, datarecording.Filter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions).To(HaveLen(1))
		Expect(sessions[0].Primary).To(Equal("baseline (untitled edits)"))

		swaps, err := datarecording.Read[SwapEntry](
			ctx, reader, SwapTable, datarecording.Filter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(swaps).To(HaveLen(1))
		Expect(swaps[0].Primary).To(Equal("edited"))
	})
})
