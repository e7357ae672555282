package networkmodel

import (
	"math"

	"github.com/sarchlab/hopsim"
	"gitlab.com/akita/akita/v3/sim"
	"gonum.org/v1/gonum/floats"
)

// residue is the amount of bits below which a leftover is moved along with
// the rest, so that rounding cannot keep a transfer from completing.
const residue = 1e-9

// A Chain is a linear sequence of hops. Hop 0 is the source, hop Last() is the
// sink.
type Chain struct {
	Links  LinkState
	Amount []float64

	hopMode       hopsim.HopMode
	bitsPerSecond float64
	totalBits     float64
}

// NewChain creates a chain that holds all the data at the source.
func NewChain(cfg hopsim.Config, links LinkState) *Chain {
	c := &Chain{
		Links:         links.Clone(),
		Amount:        make([]float64, cfg.NumHops),
		hopMode:       cfg.HopMode,
		bitsPerSecond: float64(cfg.Bandwidth),
		totalBits:     cfg.TotalBits(),
	}
	c.Amount[0] = c.totalBits

	return c
}

// Last returns the index of the sink.
func (c *Chain) Last() int {
	return len(c.Amount) - 1
}

// BitsPerSecond returns the link bandwidth.
func (c *Chain) BitsPerSecond() float64 {
	return c.bitsPerSecond
}

// TotalBits returns the amount of data the chain carries.
func (c *Chain) TotalBits() float64 {
	return c.totalBits
}

// SetLink opens or closes the link into hop i.
func (c *Chain) SetLink(i int, up bool) {
	c.Links[i] = up
}

// Destination returns where data leaving hop i goes.
func (c *Chain) Destination(i int) int {
	if c.hopMode == hopsim.HopByHop {
		return i + 1
	}

	return c.Last()
}

// CanMove tells if data at hop i can currently leave. In hop-by-hop mode only
// the next link has to be up. In end-to-end mode every link up to the sink
// has to be up.
func (c *Chain) CanMove(i int) bool {
	for j := i + 1; j <= c.Destination(i); j++ {
		if !c.Links[j] {
			return false
		}
	}

	return true
}

// Blocked tells if no hop can move data.
func (c *Chain) Blocked() bool {
	for i := 0; i < c.Last(); i++ {
		if c.CanMove(i) {
			return false
		}
	}

	return true
}

// Pending returns the amount of data that has not reached the sink.
func (c *Chain) Pending() []float64 {
	return c.Amount[:c.Last()]
}

// Delivered returns the amount of data at the sink.
func (c *Chain) Delivered() float64 {
	return c.Amount[c.Last()]
}

// Total returns the amount of data across all hops.
func (c *Chain) Total() float64 {
	return floats.Sum(c.Amount)
}

// Move advances data along the chain for the given interval, which starts at
// start. Hops are visited from the source towards the sink, so data can cross
// several hops in one call.
func (c *Chain) Move(start, interval sim.VTimeInSec) MoveResult {
	result := MoveResult{}
	last := c.Last()
	capacity := float64(interval) * c.bitsPerSecond

	for i := 0; i < last; i++ {
		if !c.CanMove(i) {
			continue
		}

		dst := c.Destination(i)
		pending := c.Amount[i]
		amt := math.Min(pending, capacity)
		if pending-amt <= residue {
			amt = pending
		}

		if amt != 0 {
			c.Amount[i] -= amt
			c.Amount[dst] += amt
			result.Transfers = append(result.Transfers, Transfer{
				From:    i,
				To:      dst,
				Bits:    amt,
				Pending: pending,
			})
		}

		if dst == last && c.Amount[last] >= c.totalBits-residue {
			result.Completed = true
			result.CompletedAt = start + interval

			return result
		}
	}

	return result
}
