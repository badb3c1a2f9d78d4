package ports

import (
	"context"

	"neurowave/domain/field"
	"neurowave/domain/pattern"
)

// DetectOptions are the global parameters handed to the pattern detector.
type DetectOptions struct {
	// MinDuration is the minimum pattern length in samples.
	MinDuration int
	// SpeedThreshold marks a cell as a critical-point candidate when its
	// speed falls below this fraction of the field's mean speed.
	SpeedThreshold float64
	// OrderThreshold is the velocity-alignment level above which a
	// timestep counts as a plane wave.
	OrderThreshold float64
	// SynchronyThreshold is the phase-coherence level above which a
	// timestep counts as global synchrony.
	SynchronyThreshold float64
}

// Detection is the per-trial output of the pattern classifier. Types and
// ColumnNames are only guaranteed stable across calls within one run; the
// caller must verify they match across trials.
type Detection struct {
	Patterns    []pattern.Pattern
	Locations   []pattern.Location
	Types       pattern.Vocabulary
	ColumnNames []string
}

// PatternDetector classifies spatiotemporal motion features in one trial's
// velocity field. vx and vy are the velocity components; phase is the angle
// of the transform coefficients for the same trial (not of the velocity).
type PatternDetector interface {
	Detect(ctx context.Context, vx, vy, phase *field.Slab, opts DetectOptions) (*Detection, error)
}
