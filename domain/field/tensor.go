package field

import (
	"math"
	"math/cmplx"
)

// ScalarField is a real-valued recording tensor indexed by
// (row, column, time, trial). Time is always the third axis; all trials
// share the same spatial and temporal extents.
type ScalarField struct {
	Rows, Cols, Timesteps, Trials int

	data []float64
}

// NewScalarField allocates a zeroed tensor with the given extents.
func NewScalarField(rows, cols, timesteps, trials int) (*ScalarField, error) {
	if rows < 1 || cols < 1 || timesteps < 1 || trials < 1 {
		return nil, NewShapeError("extents must be positive, got %dx%dx%dx%d", rows, cols, timesteps, trials)
	}
	return &ScalarField{
		Rows:      rows,
		Cols:      cols,
		Timesteps: timesteps,
		Trials:    trials,
		data:      make([]float64, rows*cols*timesteps*trials),
	}, nil
}

func (f *ScalarField) index(r, c, t, tr int) int {
	return ((tr*f.Timesteps+t)*f.Rows+r)*f.Cols + c
}

// At returns the sample at (row, column, time, trial).
func (f *ScalarField) At(r, c, t, tr int) float64 {
	return f.data[f.index(r, c, t, tr)]
}

// Set writes the sample at (row, column, time, trial).
func (f *ScalarField) Set(r, c, t, tr int, v float64) {
	f.data[f.index(r, c, t, tr)] = v
}

// TimeSeries copies the time axis at one spatial location and trial.
func (f *ScalarField) TimeSeries(r, c, tr int, dst []float64) []float64 {
	if cap(dst) < f.Timesteps {
		dst = make([]float64, f.Timesteps)
	}
	dst = dst[:f.Timesteps]
	for t := 0; t < f.Timesteps; t++ {
		dst[t] = f.At(r, c, t, tr)
	}
	return dst
}

// SetTimeSeries writes the time axis at one spatial location and trial.
func (f *ScalarField) SetTimeSeries(r, c, tr int, src []float64) {
	for t := 0; t < f.Timesteps; t++ {
		f.Set(r, c, t, tr, src[t])
	}
}

// Clone returns an independent copy of the tensor.
func (f *ScalarField) Clone() *ScalarField {
	cp := *f
	cp.data = make([]float64, len(f.data))
	copy(cp.data, f.data)
	return &cp
}

// Channels returns the number of spatial locations (rows*cols).
func (f *ScalarField) Channels() int { return f.Rows * f.Cols }

// ValidateForFlow rejects tensors that cannot support velocity estimation:
// velocity is computed between consecutive snapshots, so at least two time
// samples are required.
func (f *ScalarField) ValidateForFlow() error {
	if f.Rows < 1 || f.Cols < 1 || f.Trials < 1 {
		return NewShapeError("need at least one row, column and trial, got %dx%dx%dx%d",
			f.Rows, f.Cols, f.Timesteps, f.Trials)
	}
	if f.Timesteps < 2 {
		return NewShapeError("need at least 2 time samples for velocity estimation, got %d", f.Timesteps)
	}
	return nil
}

// Slab is a single-trial scalar volume (row x column x time). The trial
// loops hand slabs to the flow estimator and pattern detector so each
// goroutine works on an independent allocation.
type Slab struct {
	Rows, Cols, Timesteps int

	data []float64
}

// NewSlab allocates a zeroed single-trial volume.
func NewSlab(rows, cols, timesteps int) *Slab {
	return &Slab{
		Rows:      rows,
		Cols:      cols,
		Timesteps: timesteps,
		data:      make([]float64, rows*cols*timesteps),
	}
}

func (s *Slab) index(r, c, t int) int { return (t*s.Rows+r)*s.Cols + c }

// At returns the sample at (row, column, time).
func (s *Slab) At(r, c, t int) float64 { return s.data[s.index(r, c, t)] }

// Set writes the sample at (row, column, time).
func (s *Slab) Set(r, c, t int, v float64) { s.data[s.index(r, c, t)] = v }

// ComplexField holds time-frequency coefficients with the same extents as
// the recording tensor it was derived from.
type ComplexField struct {
	Rows, Cols, Timesteps, Trials int

	data []complex128
}

// NewComplexField allocates a zeroed coefficient tensor.
func NewComplexField(rows, cols, timesteps, trials int) (*ComplexField, error) {
	if rows < 1 || cols < 1 || timesteps < 1 || trials < 1 {
		return nil, NewShapeError("extents must be positive, got %dx%dx%dx%d", rows, cols, timesteps, trials)
	}
	return &ComplexField{
		Rows:      rows,
		Cols:      cols,
		Timesteps: timesteps,
		Trials:    trials,
		data:      make([]complex128, rows*cols*timesteps*trials),
	}, nil
}

func (f *ComplexField) index(r, c, t, tr int) int {
	return ((tr*f.Timesteps+t)*f.Rows+r)*f.Cols + c
}

// At returns the coefficient at (row, column, time, trial).
func (f *ComplexField) At(r, c, t, tr int) complex128 {
	return f.data[f.index(r, c, t, tr)]
}

// Set writes the coefficient at (row, column, time, trial).
func (f *ComplexField) Set(r, c, t, tr int, v complex128) {
	f.data[f.index(r, c, t, tr)] = v
}

// Amplitude returns |coefficient| at (row, column, time, trial).
func (f *ComplexField) Amplitude(r, c, t, tr int) float64 {
	return cmplx.Abs(f.At(r, c, t, tr))
}

// Phase returns the angle of the coefficient in (-pi, pi].
func (f *ComplexField) Phase(r, c, t, tr int) float64 {
	v := f.At(r, c, t, tr)
	if v == 0 {
		return 0
	}
	return math.Atan2(imag(v), real(v))
}

// PhaseSlab extracts the coefficient angles for one trial, truncated to the
// given number of timesteps so it lines up with a velocity slab.
func (f *ComplexField) PhaseSlab(tr, timesteps int) (*Slab, error) {
	if tr < 0 || tr >= f.Trials {
		return nil, ErrTrialOutOfRange
	}
	if timesteps < 1 || timesteps > f.Timesteps {
		return nil, NewShapeError("phase slab needs 1..%d timesteps, got %d", f.Timesteps, timesteps)
	}
	s := NewSlab(f.Rows, f.Cols, timesteps)
	for t := 0; t < timesteps; t++ {
		for r := 0; r < f.Rows; r++ {
			for c := 0; c < f.Cols; c++ {
				s.Set(r, c, t, f.Phase(r, c, t, tr))
			}
		}
	}
	return s, nil
}
