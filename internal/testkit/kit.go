// Package testkit provides synthetic recordings and velocity fields with
// known structure, for tests and for the demo mode of the CLI.
package testkit

import (
	"math"
	"math/rand"

	"neurowave/domain/field"
)

// PlaneWaveTensor builds a recording of a sinusoid traveling along the
// column axis: x(r,c,t) = sin(2*pi*freq*t/fs - 2*pi*c/wavelength), with a
// small deterministic jitter per trial so trials differ without changing
// the wave structure.
func PlaneWaveTensor(rows, cols, timesteps, trials int, fs, freq, wavelength float64) *field.ScalarField {
	rec, err := field.NewScalarField(rows, cols, timesteps, trials)
	if err != nil {
		panic(err)
	}
	for tr := 0; tr < trials; tr++ {
		phaseOffset := 0.1 * float64(tr)
		for t := 0; t < timesteps; t++ {
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					v := math.Sin(2*math.Pi*freq*float64(t)/fs - 2*math.Pi*float64(c)/wavelength + phaseOffset)
					rec.Set(r, c, t, tr, v)
				}
			}
		}
	}
	return rec
}

// NoiseTensor builds a seeded white-noise recording.
func NoiseTensor(rows, cols, timesteps, trials int, seed int64) *field.ScalarField {
	rec, err := field.NewScalarField(rows, cols, timesteps, trials)
	if err != nil {
		panic(err)
	}
	rng := rand.New(rand.NewSource(seed))
	for tr := 0; tr < trials; tr++ {
		for t := 0; t < timesteps; t++ {
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					rec.Set(r, c, t, tr, rng.NormFloat64())
				}
			}
		}
	}
	return rec
}

// ZeroTensor builds an all-zero recording; every channel is constant, so
// the preprocessor must flag the entire grid.
func ZeroTensor(rows, cols, timesteps, trials int) *field.ScalarField {
	rec, err := field.NewScalarField(rows, cols, timesteps, trials)
	if err != nil {
		panic(err)
	}
	return rec
}

// RadialSlabs builds velocity component slabs of a radial flow centered on
// the grid: sign=+1 is a source (flow outward), sign=-1 a sink.
func RadialSlabs(rows, cols, timesteps int, sign float64) (vx, vy *field.Slab) {
	vx = field.NewSlab(rows, cols, timesteps)
	vy = field.NewSlab(rows, cols, timesteps)
	cr := float64(rows-1) / 2
	cc := float64(cols-1) / 2
	for t := 0; t < timesteps; t++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				vx.Set(r, c, t, sign*(float64(c)-cc))
				vy.Set(r, c, t, sign*(float64(r)-cr))
			}
		}
	}
	return vx, vy
}

// RotationalSlabs builds velocity component slabs of a spiral flow:
// rotation plus a radial component with the given sign (+1 outward spiral,
// -1 inward spiral).
func RotationalSlabs(rows, cols, timesteps int, radialSign float64) (vx, vy *field.Slab) {
	vx = field.NewSlab(rows, cols, timesteps)
	vy = field.NewSlab(rows, cols, timesteps)
	cr := float64(rows-1) / 2
	cc := float64(cols-1) / 2
	for t := 0; t < timesteps; t++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				dx := float64(c) - cc
				dy := float64(r) - cr
				vx.Set(r, c, t, -dy+0.3*radialSign*dx)
				vy.Set(r, c, t, dx+0.3*radialSign*dy)
			}
		}
	}
	return vx, vy
}

// UniformSlabs builds velocity component slabs of a uniform translation.
func UniformSlabs(rows, cols, timesteps int, ux, uy float64) (vx, vy *field.Slab) {
	vx = field.NewSlab(rows, cols, timesteps)
	vy = field.NewSlab(rows, cols, timesteps)
	for t := 0; t < timesteps; t++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				vx.Set(r, c, t, ux)
				vy.Set(r, c, t, uy)
			}
		}
	}
	return vx, vy
}

// ConstantPhaseSlab builds a phase slab with a single value everywhere,
// maximally coherent.
func ConstantPhaseSlab(rows, cols, timesteps int, value float64) *field.Slab {
	s := field.NewSlab(rows, cols, timesteps)
	for t := 0; t < timesteps; t++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				s.Set(r, c, t, value)
			}
		}
	}
	return s
}

// ScatteredPhaseSlab builds a phase slab with seeded uniform phases in
// (-pi, pi], maximally incoherent in expectation.
func ScatteredPhaseSlab(rows, cols, timesteps int, seed int64) *field.Slab {
	s := field.NewSlab(rows, cols, timesteps)
	rng := rand.New(rand.NewSource(seed))
	for t := 0; t < timesteps; t++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				s.Set(r, c, t, rng.Float64()*2*math.Pi-math.Pi)
			}
		}
	}
	return s
}
