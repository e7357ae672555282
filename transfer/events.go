package transfer

import "gitlab.com/akita/akita/v3/sim"

// A deadlineEvent ends the simulation when it runs out of time.
type deadlineEvent struct {
	time    sim.VTimeInSec
	handler *Simulation
}

// Time returns the time of the event.
func (e deadlineEvent) Time() sim.VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e deadlineEvent) Handler() sim.Handler {
	return e.handler
}

// IsSecondary always returns false.
func (e deadlineEvent) IsSecondary() bool {
	return false
}

// A linkToggleEvent opens or closes the link into a hop. Once handled, it is
// rescheduled with the opposite direction.
type linkToggleEvent struct {
	time    sim.VTimeInSec
	handler *Simulation
	hop     int
	up      bool
}

// Time returns the time of the event.
func (e linkToggleEvent) Time() sim.VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e linkToggleEvent) Handler() sim.Handler {
	return e.handler
}

// IsSecondary always returns false.
func (e linkToggleEvent) IsSecondary() bool {
	return false
}

// A completionEvent marks the moment that all the data reaches the sink. It
// is handled right away rather than queued.
type completionEvent struct {
	time    sim.VTimeInSec
	handler *Simulation
}

// Time returns the time of the event.
func (e completionEvent) Time() sim.VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e completionEvent) Handler() sim.Handler {
	return e.handler
}

// IsSecondary always returns false.
func (e completionEvent) IsSecondary() bool {
	return false
}
