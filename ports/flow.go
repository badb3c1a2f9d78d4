package ports

import (
	"context"

	"neurowave/domain/field"
)

// FlowOptions are the tunable knobs of the optical-flow solver.
type FlowOptions struct {
	// Alpha is the smoothness/regularization weight.
	Alpha float64
	// Beta is the nonlinear (Charbonnier) penalty width.
	Beta float64
	// UseAmplitude selects amplitude-driven estimation; when false the
	// solver runs on the coefficient phase instead.
	UseAmplitude bool
	// MaxIterations bounds the per-timestep solver loop.
	MaxIterations int
	// Tolerance is the mean-update stopping criterion.
	Tolerance float64
}

// FlowEstimator estimates per-timestep 2D motion for a single trial.
// The returned component slabs have one fewer time sample than the input
// coefficients, and steps holds one solver iteration count per output
// timestep. Bad channels are excluded from the estimate.
type FlowEstimator interface {
	EstimateTrial(ctx context.Context, coeffs *field.ComplexField, trial int, bad *field.ChannelMask, opts FlowOptions) (vx, vy *field.Slab, steps []int, err error)
}
