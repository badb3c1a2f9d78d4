package app

import (
	"math"
	"runtime"

	"neurowave/internal/errors"
	"neurowave/ports"
)

// AnalysisParams enumerates every recognized option of the pipeline. It
// replaces the loosely-typed parameter bag of older wave toolboxes: each
// field has exactly one effect, documented here.
type AnalysisParams struct {
	// SamplingRate of the recording in Hz. Required.
	SamplingRate float64 `json:"sampling_rate"`

	// CenterFrequency is the band of interest for the time-frequency
	// transform, in Hz. Required.
	CenterFrequency float64 `json:"center_frequency"`

	// WaveletCycles is the width parameter of the Morlet kernel.
	WaveletCycles float64 `json:"wavelet_cycles"`

	// SubtractBaseline removes the per-location, per-trial mean over time.
	SubtractBaseline bool `json:"subtract_baseline"`

	// ZScoreChannels additionally divides by the per-location, per-trial
	// standard deviation over time (implies baseline removal first, since
	// the denominator is computed from the centered data).
	ZScoreChannels bool `json:"zscore_channels"`

	// OpAlpha and OpBeta are the flow-solver regularization weights.
	OpAlpha float64 `json:"op_alpha"`
	OpBeta  float64 `json:"op_beta"`

	// UseAmplitude selects amplitude- vs phase-driven flow estimation.
	UseAmplitude bool `json:"use_amplitude"`

	// FlowMaxIterations and FlowTolerance bound the solver loop.
	FlowMaxIterations int     `json:"flow_max_iterations"`
	FlowTolerance     float64 `json:"flow_tolerance"`

	// MinPatternDuration is the shortest detection kept, in samples.
	MinPatternDuration int `json:"min_pattern_duration"`

	// SpeedThreshold, OrderThreshold and SynchronyThreshold tune the
	// pattern detector (see ports.DetectOptions).
	SpeedThreshold     float64 `json:"speed_threshold"`
	OrderThreshold     float64 `json:"order_threshold"`
	SynchronyThreshold float64 `json:"synchrony_threshold"`

	// WindowAfterFrac and WindowBeforeFrac size the transition search
	// window as fractions of the sampling rate.
	WindowAfterFrac  float64 `json:"window_after_frac"`
	WindowBeforeFrac float64 `json:"window_before_frac"`

	// PerformSVD enables the visualization stage; NSVDModes and
	// UseComplexSVD are passed through to the visualizer.
	PerformSVD    bool `json:"perform_svd"`
	NSVDModes     int  `json:"n_svd_modes"`
	UseComplexSVD bool `json:"use_complex_svd"`

	// OnlyPatterns omits the coefficient and velocity tensors from the
	// result to bound memory; every derived statistic is still included.
	OnlyPatterns bool `json:"only_patterns"`

	// MaxParallelTrials bounds the per-trial worker pool. Zero means one
	// worker per CPU.
	MaxParallelTrials int `json:"max_parallel_trials"`
}

// DefaultParams returns the standard configuration for a given sampling
// rate and frequency band.
func DefaultParams(samplingRate, centerFrequency float64) AnalysisParams {
	return AnalysisParams{
		SamplingRate:       samplingRate,
		CenterFrequency:    centerFrequency,
		WaveletCycles:      6,
		SubtractBaseline:   true,
		ZScoreChannels:     false,
		OpAlpha:            0.5,
		OpBeta:             1.0,
		UseAmplitude:       false,
		FlowMaxIterations:  100,
		FlowTolerance:      1e-4,
		MinPatternDuration: 3,
		SpeedThreshold:     0.2,
		OrderThreshold:     0.85,
		SynchronyThreshold: 0.95,
		WindowAfterFrac:    0.05,
		WindowBeforeFrac:   0.01,
		NSVDModes:          4,
	}
}

// Validate checks the parameter set before a run.
func (p AnalysisParams) Validate() error {
	if p.SamplingRate <= 0 {
		return errors.ConfigInvalid("sampling rate must be positive")
	}
	if p.CenterFrequency <= 0 {
		return errors.ConfigInvalid("center frequency must be positive")
	}
	if p.CenterFrequency >= p.SamplingRate/2 {
		return errors.ConfigInvalid("center frequency must be below the Nyquist rate")
	}
	if p.WindowAfterFrac < 0 || p.WindowBeforeFrac < 0 {
		return errors.ConfigInvalid("transition window fractions must be non-negative")
	}
	return nil
}

// WindowAfter returns the transition search window after a pattern ends,
// in samples.
func (p AnalysisParams) WindowAfter() int {
	return int(math.Round(p.SamplingRate * p.WindowAfterFrac))
}

// WindowBefore returns the transition search window before a pattern
// starts, in samples.
func (p AnalysisParams) WindowBefore() int {
	return int(math.Round(p.SamplingRate * p.WindowBeforeFrac))
}

// Workers resolves the trial worker pool size.
func (p AnalysisParams) Workers() int64 {
	if p.MaxParallelTrials > 0 {
		return int64(p.MaxParallelTrials)
	}
	return int64(runtime.NumCPU())
}

// FlowOptions maps the parameter set onto the flow estimator's knobs.
func (p AnalysisParams) FlowOptions() ports.FlowOptions {
	return ports.FlowOptions{
		Alpha:         p.OpAlpha,
		Beta:          p.OpBeta,
		UseAmplitude:  p.UseAmplitude,
		MaxIterations: p.FlowMaxIterations,
		Tolerance:     p.FlowTolerance,
	}
}

// DetectOptions maps the parameter set onto the pattern detector's knobs.
func (p AnalysisParams) DetectOptions() ports.DetectOptions {
	return ports.DetectOptions{
		MinDuration:        p.MinPatternDuration,
		SpeedThreshold:     p.SpeedThreshold,
		OrderThreshold:     p.OrderThreshold,
		SynchronyThreshold: p.SynchronyThreshold,
	}
}
