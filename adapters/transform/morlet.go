// Package transform provides the time-frequency decomposition consumed by
// the velocity pipeline: a complex Morlet wavelet filter applied per
// channel, preserving the input extents along every axis.
package transform

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"neurowave/domain/field"
)

// Morlet implements ports.TransformPort with a single-band complex Morlet
// convolution. The kernel width is set in cycles of the center frequency;
// more cycles narrow the frequency response at the cost of time
// localization.
type Morlet struct{}

// NewMorlet creates the transform adapter.
func NewMorlet() *Morlet {
	return &Morlet{}
}

// Decompose filters every channel's time series with the Morlet kernel.
// Edges use zero padding, so the first and last few coefficients are
// attenuated rather than dropped; the output keeps the input shape.
func (m *Morlet) Decompose(ctx context.Context, rec *field.ScalarField, samplingRate, centerFreq, cycles float64) (*field.ComplexField, error) {
	if samplingRate <= 0 || centerFreq <= 0 {
		return nil, fmt.Errorf("sampling rate and center frequency must be positive, got %g and %g", samplingRate, centerFreq)
	}
	if cycles <= 0 {
		cycles = 6
	}

	kernel := morletKernel(samplingRate, centerFreq, cycles)
	if len(kernel) > rec.Timesteps {
		return nil, fmt.Errorf("wavelet kernel (%d samples) longer than recording (%d samples); raise the center frequency or lower the cycle count",
			len(kernel), rec.Timesteps)
	}

	out, err := field.NewComplexField(rec.Rows, rec.Cols, rec.Timesteps, rec.Trials)
	if err != nil {
		return nil, err
	}

	series := make([]float64, rec.Timesteps)
	coeffs := make([]complex128, rec.Timesteps)
	for tr := 0; tr < rec.Trials; tr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for r := 0; r < rec.Rows; r++ {
			for c := 0; c < rec.Cols; c++ {
				series = rec.TimeSeries(r, c, tr, series)
				convolveSame(series, kernel, coeffs)
				for t := 0; t < rec.Timesteps; t++ {
					out.Set(r, c, t, tr, coeffs[t])
				}
			}
		}
	}
	return out, nil
}

// morletKernel samples a unit-energy complex Morlet wavelet. The temporal
// std dev is cycles/(2*pi*fc); support is +/- 3 sigma.
func morletKernel(fs, fc, cycles float64) []complex128 {
	sigma := cycles / (2 * math.Pi * fc)
	half := int(math.Ceil(3 * sigma * fs))
	kernel := make([]complex128, 2*half+1)

	energy := 0.0
	for k := range kernel {
		t := float64(k-half) / fs
		envelope := math.Exp(-t * t / (2 * sigma * sigma))
		kernel[k] = cmplx.Rect(envelope, 2*math.Pi*fc*t)
		energy += envelope * envelope
	}
	norm := complex(1/math.Sqrt(energy), 0)
	for k := range kernel {
		kernel[k] *= norm
	}
	return kernel
}

// convolveSame writes the 'same'-length convolution of series with kernel
// into dst, zero-padding beyond the edges.
func convolveSame(series []float64, kernel []complex128, dst []complex128) {
	half := len(kernel) / 2
	for t := range series {
		var acc complex128
		for k := range kernel {
			idx := t + k - half
			if idx < 0 || idx >= len(series) {
				continue
			}
			acc += complex(series[idx], 0) * kernel[len(kernel)-1-k]
		}
		dst[t] = acc
	}
}
