// Package flow estimates per-timestep 2D motion from consecutive frames of
// a trial's time-frequency coefficients, using a Horn-Schunck iteration
// with a Charbonnier data penalty. Either coefficient amplitude or phase
// drives the estimate.
package flow

import (
	"context"
	"fmt"
	"math"

	"neurowave/domain/field"
	"neurowave/ports"
)

// HornSchunck implements ports.FlowEstimator.
type HornSchunck struct{}

// NewHornSchunck creates the flow adapter.
func NewHornSchunck() *HornSchunck {
	return &HornSchunck{}
}

const (
	defaultMaxIterations = 100
	defaultTolerance     = 1e-4
)

// EstimateTrial computes the velocity components between every pair of
// consecutive frames of one trial. The returned slabs have
// coeffs.Timesteps-1 samples on the time axis and steps holds the solver
// iteration count for each of them. Bad channels contribute nothing to
// derivatives or smoothing and get zero velocity.
func (h *HornSchunck) EstimateTrial(ctx context.Context, coeffs *field.ComplexField, trial int, bad *field.ChannelMask, opts ports.FlowOptions) (*field.Slab, *field.Slab, []int, error) {
	if trial < 0 || trial >= coeffs.Trials {
		return nil, nil, nil, field.ErrTrialOutOfRange
	}
	if coeffs.Timesteps < 2 {
		return nil, nil, nil, field.NewShapeError("flow estimation needs at least 2 timesteps, got %d", coeffs.Timesteps)
	}
	if opts.Alpha <= 0 {
		return nil, nil, nil, fmt.Errorf("smoothness weight alpha must be positive, got %g", opts.Alpha)
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}
	beta := opts.Beta
	if beta <= 0 {
		beta = 1
	}

	rows, cols := coeffs.Rows, coeffs.Cols
	outT := coeffs.Timesteps - 1
	vx := field.NewSlab(rows, cols, outT)
	vy := field.NewSlab(rows, cols, outT)
	steps := make([]int, outT)

	g := newGrid(rows, cols, bad)
	prev := g.frame(coeffs, trial, 0, opts.UseAmplitude)
	for t := 0; t < outT; t++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, err
		}
		next := g.frame(coeffs, trial, t+1, opts.UseAmplitude)
		u, v, iters := g.solve(prev, next, opts.Alpha, beta, maxIter, tol, !opts.UseAmplitude)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				vx.Set(r, c, t, u[r*cols+c])
				vy.Set(r, c, t, v[r*cols+c])
			}
		}
		steps[t] = iters
		prev = next
	}
	return vx, vy, steps, nil
}

// grid carries the spatial layout and validity mask through the solve.
type grid struct {
	rows, cols int
	bad        *field.ChannelMask
}

func newGrid(rows, cols int, bad *field.ChannelMask) *grid {
	if bad == nil {
		bad = field.NewChannelMask(rows, cols)
	}
	return &grid{rows: rows, cols: cols, bad: bad}
}

// frame extracts one timestep as a flat scalar image.
func (g *grid) frame(coeffs *field.ComplexField, trial, t int, useAmplitude bool) []float64 {
	img := make([]float64, g.rows*g.cols)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.bad.Bad(r, c) {
				continue
			}
			if useAmplitude {
				img[r*g.cols+c] = coeffs.Amplitude(r, c, t, trial)
			} else {
				img[r*g.cols+c] = coeffs.Phase(r, c, t, trial)
			}
		}
	}
	return img
}

// solve runs the nonlinear Horn-Schunck iteration for one frame pair and
// returns the velocity components plus the iteration count to convergence.
func (g *grid) solve(prev, next []float64, alpha, beta float64, maxIter int, tol float64, wrapped bool) (u, v []float64, iters int) {
	n := g.rows * g.cols
	ex := make([]float64, n)
	ey := make([]float64, n)
	et := make([]float64, n)
	g.derivatives(prev, next, ex, ey, et, wrapped)

	u = make([]float64, n)
	v = make([]float64, n)
	uNew := make([]float64, n)
	vNew := make([]float64, n)

	for iters = 1; iters <= maxIter; iters++ {
		delta := 0.0
		counted := 0
		for r := 0; r < g.rows; r++ {
			for c := 0; c < g.cols; c++ {
				idx := r*g.cols + c
				if g.bad.Bad(r, c) {
					uNew[idx], vNew[idx] = 0, 0
					continue
				}
				ubar := g.neighborMean(u, r, c)
				vbar := g.neighborMean(v, r, c)
				residual := ex[idx]*ubar + ey[idx]*vbar + et[idx]
				// Charbonnier weight tempers the data term where the
				// residual is large relative to beta.
				w := 1 / math.Sqrt(1+(residual/beta)*(residual/beta))
				denom := alpha*alpha + w*(ex[idx]*ex[idx]+ey[idx]*ey[idx])
				uNew[idx] = ubar - w*ex[idx]*residual/denom
				vNew[idx] = vbar - w*ey[idx]*residual/denom
				delta += math.Abs(uNew[idx]-u[idx]) + math.Abs(vNew[idx]-v[idx])
				counted++
			}
		}
		u, uNew = uNew, u
		v, vNew = vNew, v
		if counted == 0 || delta/float64(counted) < tol {
			break
		}
	}
	if iters > maxIter {
		iters = maxIter
	}
	return u, v, iters
}

// derivatives computes the Horn-Schunck forward-difference stencils,
// averaged over the two-frame cube. For phase data, differences wrap into
// (-pi, pi].
func (g *grid) derivatives(prev, next []float64, ex, ey, et []float64, wrapped bool) {
	diff := func(a, b float64) float64 {
		d := a - b
		if wrapped {
			for d > math.Pi {
				d -= 2 * math.Pi
			}
			for d <= -math.Pi {
				d += 2 * math.Pi
			}
		}
		return d
	}
	at := func(img []float64, r, c int) (float64, bool) {
		if r < 0 || r >= g.rows || c < 0 || c >= g.cols || g.bad.Bad(r, c) {
			return 0, false
		}
		return img[r*g.cols+c], true
	}
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			idx := r*g.cols + c
			if g.bad.Bad(r, c) {
				continue
			}
			var sx, sy, st float64
			var nx, ny, nt int
			for _, img := range [][]float64{prev, next} {
				if a, okA := at(img, r, c); okA {
					if b, okB := at(img, r, c+1); okB {
						sx += diff(b, a)
						nx++
					}
					if b, okB := at(img, r+1, c); okB {
						sy += diff(b, a)
						ny++
					}
				}
			}
			if a, okA := at(prev, r, c); okA {
				if b, okB := at(next, r, c); okB {
					st += diff(b, a)
					nt++
				}
			}
			if nx > 0 {
				ex[idx] = sx / float64(nx)
			}
			if ny > 0 {
				ey[idx] = sy / float64(ny)
			}
			if nt > 0 {
				et[idx] = st / float64(nt)
			}
		}
	}
}

// neighborMean averages the 4-neighborhood, skipping bad channels and
// borders.
func (g *grid) neighborMean(vals []float64, r, c int) float64 {
	sum := 0.0
	count := 0
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nr, nc := r+d[0], c+d[1]
		if nr < 0 || nr >= g.rows || nc < 0 || nc >= g.cols || g.bad.Bad(nr, nc) {
			continue
		}
		sum += vals[nr*g.cols+nc]
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
