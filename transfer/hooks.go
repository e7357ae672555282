package transfer

import (
	"github.com/sarchlab/hopsim"
	"github.com/sarchlab/hopsim/networkmodel"
	"gitlab.com/akita/akita/v3/sim"
)

// Hook positions of a Simulation.
var (
	// HookPosRunStart triggers once before the first event. The detail is a
	// RunStart.
	HookPosRunStart = &sim.HookPos{Name: "RunStart"}

	// HookPosMoveAttempt triggers whenever data is about to be moved. The
	// detail is a MoveAttempt.
	HookPosMoveAttempt = &sim.HookPos{Name: "MoveAttempt"}

	// HookPosDataMoved triggers for every transfer between two hops. The
	// detail is a DataMoved.
	HookPosDataMoved = &sim.HookPos{Name: "DataMoved"}

	// HookPosLinkToggle triggers when a link opens or closes. The detail is a
	// LinkUpdate.
	HookPosLinkToggle = &sim.HookPos{Name: "LinkToggle"}

	// HookPosRunEnd triggers once the simulation reaches a final state. The
	// detail is the Result.
	HookPosRunEnd = &sim.HookPos{Name: "RunEnd"}
)

// RunStart describes the simulation at the time it starts.
type RunStart struct {
	Config hopsim.Config
	Links  networkmodel.LinkState
}

// MoveAttempt describes a call to move data over an interval.
type MoveAttempt struct {
	Now      sim.VTimeInSec
	Interval sim.VTimeInSec

	// LastChunk is set when the interval is the estimated remaining time,
	// shorter than the time to the next event.
	LastChunk bool
}

// DataMoved describes a single transfer.
type DataMoved struct {
	Now      sim.VTimeInSec
	Transfer networkmodel.Transfer
}

// LinkUpdate describes a link changing state.
type LinkUpdate struct {
	Now sim.VTimeInSec
	Hop int
	Up  bool
}
