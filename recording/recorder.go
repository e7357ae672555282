package recording

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sarchlab/hopsim/transfer"
	"gitlab.com/akita/akita/v3/sim"
)

// Kinds of records.
const (
	KindStart    = "start"
	KindLink     = "link"
	KindTransfer = "transfer"
	KindEnd      = "end"
)

// A Record is one thing that happened during a run.
type Record struct {
	RunID string
	Time  float64
	Kind  string

	// From and To are hop indices. A link record only sets To.
	From, To int
	Bits     float64
	What     string
}

// A Backend stores records.
type Backend interface {
	Write(r Record)
	Flush()
}

// A RunRecorder is a hook that turns the progress of a simulation into
// records.
type RunRecorder struct {
	runID   string
	backend Backend
}

// NewRunRecorder creates a RunRecorder with a fresh run ID.
func NewRunRecorder(backend Backend) *RunRecorder {
	return &RunRecorder{
		runID:   xid.New().String(),
		backend: backend,
	}
}

// RunID returns the ID that is attached to all the records.
func (r *RunRecorder) RunID() string {
	return r.runID
}

// Func records the hook position if it is of interest.
func (r *RunRecorder) Func(ctx sim.HookCtx) {
	switch d := ctx.Detail.(type) {
	case transfer.RunStart:
		r.write(Record{
			Kind: KindStart,
			What: d.Config.String(),
		})
	case transfer.LinkUpdate:
		what := "down"
		if d.Up {
			what = "up"
		}

		r.write(Record{
			Time: float64(d.Now),
			Kind: KindLink,
			To:   d.Hop,
			What: what,
		})
	case transfer.DataMoved:
		r.write(Record{
			Time: float64(d.Now),
			Kind: KindTransfer,
			From: d.Transfer.From,
			To:   d.Transfer.To,
			Bits: d.Transfer.Bits,
		})
	case transfer.Result:
		r.write(Record{
			Time: float64(d.Elapsed),
			Kind: KindEnd,
			Bits: d.Delivered,
			What: fmt.Sprintf("%s after %d events", d.State, d.Events),
		})
		r.backend.Flush()
	}
}

func (r *RunRecorder) write(rec Record) {
	rec.RunID = r.runID
	r.backend.Write(rec)
}
