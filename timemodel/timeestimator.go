// Package timemodel provides estimates of how long the remaining data needs
// to reach the sink.
package timemodel

import (
	"math"

	"gitlab.com/akita/akita/v3/sim"
	"gonum.org/v1/gonum/floats"
)

// Unbounded is the estimate returned when no data can move at all.
var Unbounded = sim.VTimeInSec(math.Inf(1))

// A TimeEstimatorInput represents the input of a time estimator.
type TimeEstimatorInput struct {
	// Bits waiting at every hop except the sink.
	Pending []float64

	BitsPerSecond float64

	// Blocked is true if no hop can currently move data.
	Blocked bool
}

// A TimeEstimatorOutput represents the output of a time estimator.
type TimeEstimatorOutput struct {
	// The estimated remaining time in seconds.
	TimeInSec sim.VTimeInSec
}

// IsUnbounded tells if the estimate is infinite.
func (o TimeEstimatorOutput) IsUnbounded() bool {
	return math.IsInf(float64(o.TimeInSec), 1)
}

// TimeEstimator estimates the time until all the data reaches the sink.
type TimeEstimator interface {
	// Estimate estimates the remaining time to completion.
	Estimate(input TimeEstimatorInput) TimeEstimatorOutput
}

// An OptimisticEstimator assumes the network stays open and forwards all the
// pending data at full bandwidth.
type OptimisticEstimator struct{}

// Estimate returns the pending data divided by the bandwidth, or Unbounded if
// the network is blocked.
func (e *OptimisticEstimator) Estimate(
	input TimeEstimatorInput,
) TimeEstimatorOutput {
	if input.Blocked || input.BitsPerSecond <= 0 {
		return TimeEstimatorOutput{TimeInSec: Unbounded}
	}

	return TimeEstimatorOutput{
		TimeInSec: sim.VTimeInSec(floats.Sum(input.Pending) / input.BitsPerSecond),
	}
}
