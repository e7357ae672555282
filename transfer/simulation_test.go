package transfer

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/hopsim"
	"github.com/sarchlab/hopsim/eventqueue"
	"github.com/sarchlab/hopsim/networkmodel"
	"github.com/sarchlab/hopsim/timemodel"
	"gitlab.com/akita/akita/v3/sim"
)

func baseConfig() hopsim.Config {
	cfg := hopsim.DefaultConfig()
	cfg.Count = 10
	cfg.Size = 100
	cfg.NumHops = 2
	cfg.Bandwidth = 1000
	cfg.HopMode = hopsim.HopByHop
	cfg.Conn = hopsim.ConnAlwaysUp

	return cfg
}

var _ = Describe("Simulation", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
		ctxs     []sim.HookCtx
		cfg      hopsim.Config
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = NewMockHook(mockCtrl)
		ctxs = nil
		cfg = baseConfig()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newSimulation := func() *Simulation {
		s, err := NewSimulation(cfg, &timemodel.OptimisticEstimator{})
		Expect(err).ToNot(HaveOccurred())

		hook.EXPECT().Func(gomock.Any()).
			Do(func(ctx sim.HookCtx) { ctxs = append(ctxs, ctx) }).
			AnyTimes()
		s.AcceptHook(hook)

		return s
	}

	detailsAt := func(pos *sim.HookPos) []interface{} {
		var details []interface{}
		for _, ctx := range ctxs {
			if ctx.Pos == pos {
				details = append(details, ctx.Detail)
			}
		}

		return details
	}

	It("should finish a transfer over an always-up link", func() {
		s := newSimulation()

		result, err := s.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(result.State).To(Equal(Completed))
		Expect(result.Elapsed).To(Equal(sim.VTimeInSec(8)))
		Expect(result.Delivered).To(Equal(8000.0))
		Expect(result.Events).To(Equal(1))
		Expect(result.Transfers).To(Equal(1))
		Expect(s.State()).To(Equal(Completed))
		Expect(s.CurrentTime()).To(Equal(sim.VTimeInSec(8)))

		Expect(ctxs).To(HaveLen(4))
		Expect(ctxs[0].Pos).To(Equal(HookPosRunStart))
		Expect(ctxs[0].Detail).To(Equal(RunStart{
			Config: cfg,
			Links:  networkmodel.LinkState{true, true},
		}))
		Expect(ctxs[1].Detail).To(Equal(MoveAttempt{
			Now:       0,
			Interval:  8,
			LastChunk: true,
		}))
		Expect(ctxs[2].Detail).To(Equal(DataMoved{
			Now: 0,
			Transfer: networkmodel.Transfer{
				From: 0, To: 1, Bits: 8000, Pending: 8000,
			},
		}))
		Expect(ctxs[3].Pos).To(Equal(HookPosRunEnd))
		Expect(ctxs[3].Detail).To(Equal(result))
	})

	It("should wait for the second link in sequential mode", func() {
		cfg.NumHops = 3
		cfg.Conn = hopsim.ConnSequential
		s := newSimulation()

		result, err := s.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(result.State).To(Equal(Completed))
		Expect(result.Elapsed).To(Equal(sim.VTimeInSec(68)))

		for _, d := range detailsAt(HookPosDataMoved) {
			moved := d.(DataMoved)
			if moved.Transfer.To == 2 {
				Expect(moved.Now >= 60).To(BeTrue())
			}
		}
	})

	It("should time out if the paths never line up end to end", func() {
		cfg.NumHops = 3
		cfg.Conn = hopsim.ConnSequential
		cfg.HopMode = hopsim.EndToEnd
		s := newSimulation()

		result, err := s.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(result.State).To(Equal(TimedOut))
		Expect(result.Elapsed).To(Equal(sim.VTimeInSec(1800)))
		Expect(result.Delivered).To(BeZero())
		Expect(detailsAt(HookPosDataMoved)).To(BeEmpty())
	})

	It("should time out when the bandwidth is too low", func() {
		cfg.Bandwidth = 1
		s := newSimulation()

		result, err := s.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(result.State).To(Equal(TimedOut))
		Expect(result.Elapsed).To(Equal(sim.VTimeInSec(1800)))
		Expect(result.Delivered).To(Equal(1800.0))
		Expect(s.CurrentTime()).To(Equal(sim.VTimeInSec(1800)))
	})

	It("should refuse to run twice", func() {
		s := newSimulation()
		_, err := s.Run()
		Expect(err).ToNot(HaveOccurred())

		_, err = s.Run()

		Expect(err).To(MatchError(ErrFinished))
	})

	It("should report an exhausted queue", func() {
		s := newSimulation()
		s.queue = eventqueue.New()

		_, err := s.Run()

		Expect(err).To(MatchError(ErrQueueExhausted))
	})

	It("should reject an infeasible shift10 chain before running", func() {
		cfg.NumHops = 7
		cfg.Conn = hopsim.ConnShift10

		s, err := NewSimulation(cfg, &timemodel.OptimisticEstimator{})

		Expect(s).To(BeNil())
		Expect(err).To(MatchError(hopsim.ErrInfeasibleSchedule))
	})

	It("should reject an unknown conn mode", func() {
		cfg.Conn = "star"

		_, err := NewSimulation(cfg, &timemodel.OptimisticEstimator{})

		Expect(err).To(MatchError(hopsim.ErrUnknownConnMode))
	})

	Context("when a link toggles", func() {
		It("should close the link and schedule it to reopen", func() {
			cfg.Downtime = 240
			s := newSimulation()

			err := s.Handle(linkToggleEvent{time: 60, handler: s, hop: 1})

			Expect(err).ToNot(HaveOccurred())
			Expect(s.Chain().Links).To(Equal(networkmodel.LinkState{true, false}))
			Expect(s.queue.Pop()).To(Equal(linkToggleEvent{
				time: 300, handler: s, hop: 1, up: true,
			}))
			Expect(detailsAt(HookPosLinkToggle)).To(Equal([]interface{}{
				LinkUpdate{Now: 0, Hop: 1, Up: false},
			}))
		})

		It("should open the link and schedule it to close", func() {
			cfg.Uptime = 60
			s := newSimulation()
			s.Chain().SetLink(1, false)

			err := s.Handle(linkToggleEvent{time: 60, handler: s, hop: 1, up: true})

			Expect(err).ToNot(HaveOccurred())
			Expect(s.Chain().Links).To(Equal(networkmodel.LinkState{true, true}))
			Expect(s.queue.Pop()).To(Equal(linkToggleEvent{
				time: 120, handler: s, hop: 1, up: false,
			}))
		})
	})

	Context("with a mocked estimator", func() {
		var estimator *MockTimeEstimator

		BeforeEach(func() {
			estimator = NewMockTimeEstimator(mockCtrl)
		})

		It("should not pre-move when the estimate reaches past the next event", func() {
			estimator.EXPECT().
				Estimate(timemodel.TimeEstimatorInput{
					Pending:       []float64{8000},
					BitsPerSecond: 1000,
				}).
				Return(timemodel.TimeEstimatorOutput{
					TimeInSec: timemodel.Unbounded,
				})
			s, err := NewSimulation(cfg, estimator)
			Expect(err).ToNot(HaveOccurred())

			result, err := s.Run()

			Expect(err).ToNot(HaveOccurred())
			Expect(result.State).To(Equal(Completed))
			Expect(result.Elapsed).To(Equal(sim.VTimeInSec(1800)))
		})
	})

	Context("for every schedule and forwarding mode", func() {
		for _, conn := range hopsim.ConnModes {
			for _, hopMode := range hopsim.HopModes {
				conn, hopMode := conn, hopMode

				It("should conserve data and keep time monotonic "+
					string(conn)+"/"+string(hopMode), func() {
					cfg = baseConfig()
					cfg.NumHops = 5
					cfg.Count = 100
					cfg.Bandwidth = 700
					cfg.Conn = conn
					cfg.HopMode = hopMode

					s, err := NewSimulation(cfg, &timemodel.OptimisticEstimator{})
					Expect(err).ToNot(HaveOccurred())

					now := sim.VTimeInSec(0)
					hook.EXPECT().Func(gomock.Any()).
						Do(func(ctx sim.HookCtx) {
							Expect(s.Chain().Total()).
								To(BeNumerically("~", cfg.TotalBits(), 1e-6))
							Expect(s.CurrentTime() >= now).To(BeTrue())
							now = s.CurrentTime()
						}).
						AnyTimes()
					s.AcceptHook(hook)

					result, err := s.Run()

					Expect(err).ToNot(HaveOccurred())
					Expect(result.State).To(BeElementOf(Completed, TimedOut))
					Expect(result.Elapsed <= 1800).To(BeTrue())
				})
			}
		}
	})
})
