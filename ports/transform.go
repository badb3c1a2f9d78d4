package ports

import (
	"context"

	"neurowave/domain/field"
)

// TransformPort converts real-valued signals per channel into a
// complex-valued, time-localized frequency representation. The output has
// the same extents as the input along every axis.
type TransformPort interface {
	// Decompose runs the time-frequency transform over the whole tensor.
	// centerFreq is in Hz; bandwidth is the transform's width parameter
	// (for a Morlet kernel, the number of cycles).
	Decompose(ctx context.Context, rec *field.ScalarField, samplingRate, centerFreq, bandwidth float64) (*field.ComplexField, error)
}
