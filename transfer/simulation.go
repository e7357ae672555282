// Package transfer runs the discrete event simulation of a bulk transfer over
// a chain of intermittently connected hops.
package transfer

import (
	"errors"
	"log"
	"reflect"

	"github.com/sarchlab/hopsim"
	"github.com/sarchlab/hopsim/connectivity"
	"github.com/sarchlab/hopsim/eventqueue"
	"github.com/sarchlab/hopsim/networkmodel"
	"github.com/sarchlab/hopsim/timemodel"
	"gitlab.com/akita/akita/v3/sim"
)

// ErrQueueExhausted is returned when the event queue runs empty before the
// simulation has finished. Link toggles reschedule themselves and a deadline
// is always queued, so this only happens if the simulator itself is broken.
var ErrQueueExhausted = errors.New("no events in queue but not complete")

// ErrFinished is returned when running a simulation that has already
// finished.
var ErrFinished = errors.New("simulation already finished")

// State is the state of a simulation.
type State int

// State constants
const (
	Running State = iota
	Completed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Result is the outcome of a simulation.
type Result struct {
	State State

	// Elapsed is the simulated time at which the data reached the sink, or
	// the deadline if it did not.
	Elapsed sim.VTimeInSec

	// Delivered is the number of bits at the sink when the simulation ended.
	Delivered float64

	Events    int
	Transfers int
}

// A Simulation moves data along a chain while the links of the chain open and
// close.
type Simulation struct {
	sim.HookableBase

	cfg       hopsim.Config
	chain     *networkmodel.Chain
	queue     *eventqueue.Queue
	estimator timemodel.TimeEstimator
	initial   networkmodel.LinkState

	clock  sim.VTimeInSec
	state  State
	result Result
}

// NewSimulation creates a simulation for the given configuration. It fails if
// the configuration is invalid or its connectivity mode cannot be built.
func NewSimulation(
	cfg hopsim.Config,
	estimator timemodel.TimeEstimator,
) (*Simulation, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	schedule, err := connectivity.Initialize(cfg)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:       cfg,
		chain:     networkmodel.NewChain(cfg, schedule.Links),
		queue:     eventqueue.New(),
		estimator: estimator,
		initial:   networkmodel.LinkState(schedule.Links).Clone(),
		state:     Running,
	}

	s.queue.Push(deadlineEvent{time: connectivity.Deadline, handler: s})
	for _, t := range schedule.Toggles {
		s.queue.Push(linkToggleEvent{
			time:    t.Time,
			handler: s,
			hop:     t.Hop,
			up:      t.Up,
		})
	}

	return s, nil
}

// Config returns the configuration of the simulation.
func (s *Simulation) Config() hopsim.Config {
	return s.cfg
}

// Chain returns the chain that the simulation moves data along.
func (s *Simulation) Chain() *networkmodel.Chain {
	return s.chain
}

// CurrentTime returns the simulated time.
func (s *Simulation) CurrentTime() sim.VTimeInSec {
	return s.clock
}

// State returns the current state of the simulation.
func (s *Simulation) State() State {
	return s.state
}

// Run processes events until the data reaches the sink or the deadline
// passes.
func (s *Simulation) Run() (Result, error) {
	if s.state != Running {
		return s.result, ErrFinished
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosRunStart,
		Detail: RunStart{Config: s.cfg, Links: s.initial.Clone()},
	})

	for s.state == Running {
		if s.queue.Len() == 0 {
			return s.result, ErrQueueExhausted
		}

		evt := s.queue.Pop()
		if evt.Time() < s.clock {
			log.Panicf(
				"cannot run event in the past, evt %s @ %.0f, now %.0f",
				reflect.TypeOf(evt), evt.Time(), s.clock,
			)
		}
		s.result.Events++

		elapsed := evt.Time() - s.clock
		estimate := s.estimate()

		if estimate.TimeInSec < elapsed {
			if s.move(s.clock, estimate.TimeInSec, true) {
				break
			}
		}

		start := s.clock
		s.clock = evt.Time()

		if elapsed != 0 && !s.chain.Blocked() {
			if s.move(start, elapsed, false) {
				break
			}
		}

		err := s.Handle(evt)
		if err != nil {
			return s.result, err
		}
	}

	s.result.Delivered = s.chain.Delivered()
	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosRunEnd,
		Detail: s.result,
	})

	return s.result, nil
}

func (s *Simulation) estimate() timemodel.TimeEstimatorOutput {
	return s.estimator.Estimate(timemodel.TimeEstimatorInput{
		Pending:       s.chain.Pending(),
		BitsPerSecond: s.chain.BitsPerSecond(),
		Blocked:       s.chain.Blocked(),
	})
}

// move advances the data over an interval. It returns true if the transfer
// completed.
func (s *Simulation) move(
	start, interval sim.VTimeInSec,
	lastChunk bool,
) bool {
	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosMoveAttempt,
		Detail: MoveAttempt{
			Now:       s.clock,
			Interval:  interval,
			LastChunk: lastChunk,
		},
	})

	moved := s.chain.Move(start, interval)
	for _, t := range moved.Transfers {
		s.result.Transfers++
		s.InvokeHook(sim.HookCtx{
			Domain: s,
			Pos:    HookPosDataMoved,
			Detail: DataMoved{Now: s.clock, Transfer: t},
		})
	}

	if !moved.Completed {
		return false
	}

	err := s.Handle(completionEvent{time: moved.CompletedAt, handler: s})
	if err != nil {
		panic(err)
	}

	return true
}

// Handle applies the effect of an event.
func (s *Simulation) Handle(e sim.Event) error {
	switch e := e.(type) {
	case deadlineEvent:
		s.handleDeadline(e)
	case linkToggleEvent:
		s.handleLinkToggle(e)
	case completionEvent:
		s.handleCompletion(e)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (s *Simulation) handleDeadline(e deadlineEvent) {
	s.state = TimedOut
	s.result.State = TimedOut
	s.result.Elapsed = e.time
}

func (s *Simulation) handleCompletion(e completionEvent) {
	s.clock = e.time
	s.state = Completed
	s.result.State = Completed
	s.result.Elapsed = e.time
}

func (s *Simulation) handleLinkToggle(e linkToggleEvent) {
	s.chain.SetLink(e.hop, e.up)

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosLinkToggle,
		Item:   e,
		Detail: LinkUpdate{Now: s.clock, Hop: e.hop, Up: e.up},
	})

	next := e
	if e.up {
		next.time += sim.VTimeInSec(s.cfg.Uptime)
	} else {
		next.time += sim.VTimeInSec(s.cfg.Downtime)
	}
	next.up = !e.up

	s.queue.Push(next)
}
