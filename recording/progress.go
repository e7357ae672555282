// Package recording observes simulations through hooks. It prints their
// progress and stores what happened during a run in CSV files or SQLite
// databases.
package recording

import (
	"fmt"
	"io"

	"github.com/sarchlab/hopsim/transfer"
	"gitlab.com/akita/akita/v3/sim"
)

// A ProgressPrinter writes a human-readable log of a simulation.
type ProgressPrinter struct {
	w           io.Writer
	messageBits float64
}

// NewProgressPrinter creates a ProgressPrinter that writes to w. Message
// counts are derived from messageBits, the size of one message in bits.
func NewProgressPrinter(w io.Writer, messageBits float64) *ProgressPrinter {
	return &ProgressPrinter{w: w, messageBits: messageBits}
}

// Func prints the line that belongs to the hook position.
func (p *ProgressPrinter) Func(ctx sim.HookCtx) {
	switch d := ctx.Detail.(type) {
	case transfer.RunStart:
		fmt.Fprintln(p.w, "initial link states:")
		fmt.Fprint(p.w, d.Links.String())
	case transfer.MoveAttempt:
		if d.LastChunk {
			p.printf(d.Now, "trying to move last chunk")
		}
		p.printf(d.Now, "%d seconds elapsed... trying to move data",
			int64(d.Interval))
	case transfer.DataMoved:
		t := d.Transfer
		p.printf(d.Now, "moving %d/%d bits (%d msgs) from %d to %d",
			int64(t.Bits), int64(t.Pending), p.messages(t.Bits),
			t.From, t.To)
	case transfer.LinkUpdate:
		if d.Up {
			p.printf(d.Now, "opening link %d", d.Hop)
		} else {
			p.printf(d.Now, "closing link %d", d.Hop)
		}
	}
}

func (p *ProgressPrinter) messages(bits float64) int64 {
	if p.messageBits <= 0 {
		return 0
	}

	return int64(bits / p.messageBits)
}

func (p *ProgressPrinter) printf(
	now sim.VTimeInSec,
	format string,
	args ...interface{},
) {
	fmt.Fprintf(p.w, "[%d]: ", int64(now))
	fmt.Fprintf(p.w, format, args...)
	fmt.Fprintln(p.w)
}
