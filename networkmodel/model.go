// Package networkmodel provides the link and flow state of a linear chain of
// hops and moves data along the chain as time passes.
package networkmodel

import (
	"fmt"
	"strings"

	"gitlab.com/akita/akita/v3/sim"
)

// A Transfer represents data moving from one hop to another within a single
// interval.
type Transfer struct {
	From, To int

	// Bits is the amount that moved. Pending is the amount that waited at
	// From before the move.
	Bits    float64
	Pending float64
}

// MoveResult reports what happened while data was moved over an interval.
type MoveResult struct {
	Transfers []Transfer

	// Completed is set once all the data has reached the sink. CompletedAt
	// is the end of the interval in which that happened.
	Completed   bool
	CompletedAt sim.VTimeInSec
}

// LinkState holds the up or down flag of every link. Entry i is the link that
// data crosses to reach hop i.
type LinkState []bool

// Clone returns a copy of the link state.
func (s LinkState) Clone() LinkState {
	c := make(LinkState, len(s))
	copy(c, s)

	return c
}

// String lists the state of every link, one per line.
func (s LinkState) String() string {
	var b strings.Builder
	for i, up := range s {
		fmt.Fprintf(&b, "\t%d: %t\n", i, up)
	}

	return b.String()
}
