// Package connectivity builds the scripted link availability patterns that
// drive a simulation.
package connectivity

import (
	"fmt"

	"github.com/sarchlab/hopsim"
	"gitlab.com/akita/akita/v3/sim"
)

// Deadline is the longest a simulation is allowed to run.
const Deadline sim.VTimeInSec = 60 * 30

// shift10Window is the period, in seconds, that the shift10 pattern spreads
// the link openings over.
const shift10Window = 60

// A Toggle seeds the first state change of a link. A link with a toggle keeps
// cycling through uptime and downtime for the rest of the run.
type Toggle struct {
	Time sim.VTimeInSec
	Hop  int

	// Up is true if the link opens at Time, false if it closes.
	Up bool
}

// A Schedule is the initial link state of the chain together with the toggles
// that start the links cycling.
type Schedule struct {
	Links   []bool
	Toggles []Toggle
}

// Initialize builds the schedule that the configured conn mode describes.
// Entry 0 of the link state belongs to the source and never toggles.
func Initialize(cfg hopsim.Config) (Schedule, error) {
	s := Schedule{Links: make([]bool, cfg.NumHops)}
	for i := range s.Links {
		s.Links[i] = true
	}

	uptime := sim.VTimeInSec(cfg.Uptime)

	switch cfg.Conn {
	case hopsim.ConnAlwaysUp:
	case hopsim.ConnAll2:
		for i := 1; i < cfg.NumHops; i++ {
			s.closeAt(uptime, i)
		}
	case hopsim.ConnSequential:
		s.closeAt(uptime, 1)
		for i := 2; i < cfg.NumHops; i++ {
			s.Links[i] = false
			s.openAt(sim.VTimeInSec((i-1)*60), i)
		}
	case hopsim.ConnOffset2:
		for i := 1; i < cfg.NumHops; i++ {
			if i%2 == 0 {
				s.Links[i] = false
				s.openAt(120, i)
			} else {
				s.closeAt(uptime, i)
			}
		}
	case hopsim.ConnShift10:
		if cfg.NumHops*10 > shift10Window {
			return Schedule{}, fmt.Errorf(
				"%w: shift10 can't handle more than %d hops, got %d",
				hopsim.ErrInfeasibleSchedule, shift10Window/10, cfg.NumHops)
		}

		s.closeAt(uptime, 1)
		for i := 2; i < cfg.NumHops; i++ {
			s.Links[i] = false
			s.openAt(sim.VTimeInSec(10*(i-1)), i)
		}
	default:
		return Schedule{}, fmt.Errorf("%w: %q",
			hopsim.ErrUnknownConnMode, cfg.Conn)
	}

	return s, nil
}

func (s *Schedule) openAt(t sim.VTimeInSec, hop int) {
	s.Toggles = append(s.Toggles, Toggle{Time: t, Hop: hop, Up: true})
}

func (s *Schedule) closeAt(t sim.VTimeInSec, hop int) {
	s.Toggles = append(s.Toggles, Toggle{Time: t, Hop: hop, Up: false})
}
