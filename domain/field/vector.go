package field

import "math"

// Vector is a 2D motion estimate at one grid cell. The x component plays
// the role of the real part and the y component the imaginary part of the
// complex velocity representation used by the pattern statistics, without
// relying on a native complex primitive.
type Vector struct {
	X, Y float64
}

// Magnitude returns the speed |v|.
func (v Vector) Magnitude() float64 { return math.Hypot(v.X, v.Y) }

// Angle returns the direction of motion in (-pi, pi].
func (v Vector) Angle() float64 { return math.Atan2(v.Y, v.X) }

// VectorField is the estimated velocity tensor indexed by
// (row, column, time, trial). It has exactly one fewer time sample than the
// coefficient tensor it was derived from, because velocity is estimated
// between consecutive snapshots. Never mutated after the builder completes.
type VectorField struct {
	Rows, Cols, Timesteps, Trials int

	data []Vector
}

// NewVectorField allocates a zeroed velocity tensor.
func NewVectorField(rows, cols, timesteps, trials int) (*VectorField, error) {
	if rows < 1 || cols < 1 || timesteps < 1 || trials < 1 {
		return nil, NewShapeError("extents must be positive, got %dx%dx%dx%d", rows, cols, timesteps, trials)
	}
	return &VectorField{
		Rows:      rows,
		Cols:      cols,
		Timesteps: timesteps,
		Trials:    trials,
		data:      make([]Vector, rows*cols*timesteps*trials),
	}, nil
}

func (f *VectorField) index(r, c, t, tr int) int {
	return ((tr*f.Timesteps+t)*f.Rows+r)*f.Cols + c
}

// At returns the velocity vector at (row, column, time, trial).
func (f *VectorField) At(r, c, t, tr int) Vector { return f.data[f.index(r, c, t, tr)] }

// Set writes the velocity vector at (row, column, time, trial).
func (f *VectorField) Set(r, c, t, tr int, v Vector) { f.data[f.index(r, c, t, tr)] = v }

// SetTrialComponents composes one trial's velocity from separate x and y
// component slabs. Each trial writes to a disjoint region, so concurrent
// calls for different trials need no locking.
func (f *VectorField) SetTrialComponents(tr int, vx, vy *Slab) error {
	if tr < 0 || tr >= f.Trials {
		return ErrTrialOutOfRange
	}
	if vx.Rows != f.Rows || vx.Cols != f.Cols || vx.Timesteps != f.Timesteps ||
		vy.Rows != f.Rows || vy.Cols != f.Cols || vy.Timesteps != f.Timesteps {
		return ErrDimensionMismatch
	}
	for t := 0; t < f.Timesteps; t++ {
		for r := 0; r < f.Rows; r++ {
			for c := 0; c < f.Cols; c++ {
				f.Set(r, c, t, tr, Vector{X: vx.At(r, c, t), Y: vy.At(r, c, t)})
			}
		}
	}
	return nil
}

// TrialComponents splits one trial back into x and y component slabs, the
// form the pattern detector consumes.
func (f *VectorField) TrialComponents(tr int) (vx, vy *Slab, err error) {
	if tr < 0 || tr >= f.Trials {
		return nil, nil, ErrTrialOutOfRange
	}
	vx = NewSlab(f.Rows, f.Cols, f.Timesteps)
	vy = NewSlab(f.Rows, f.Cols, f.Timesteps)
	for t := 0; t < f.Timesteps; t++ {
		for r := 0; r < f.Rows; r++ {
			for c := 0; c < f.Cols; c++ {
				v := f.At(r, c, t, tr)
				vx.Set(r, c, t, v.X)
				vy.Set(r, c, t, v.Y)
			}
		}
	}
	return vx, vy, nil
}
