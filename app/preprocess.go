package app

import (
	"math"

	"github.com/montanaflynn/stats"

	"neurowave/domain/field"
	apperrors "neurowave/internal/errors"
)

// Preprocess normalizes the recording tensor and flags invalid channels.
//
// When SubtractBaseline or ZScoreChannels is set, the per-location,
// per-trial mean over time is removed from every sample. When
// ZScoreChannels is set, every sample is then divided by the standard
// deviation over time at that location and trial; the denominator is
// computed from the already-centered data, so the ordering is load-bearing.
//
// Invalid channels are spatial locations with any missing value across the
// whole tensor, or a constant signal over the full time axis. They are
// flagged, never removed: the flow estimator interpolates across them.
func Preprocess(rec *field.ScalarField, p AnalysisParams) (*field.ScalarField, *field.ChannelMask, error) {
	if err := rec.ValidateForFlow(); err != nil {
		return nil, nil, apperrors.InvalidShape(err)
	}

	out := rec
	if p.SubtractBaseline || p.ZScoreChannels {
		out = rec.Clone()
		buf := make([]float64, out.Timesteps)
		for tr := 0; tr < out.Trials; tr++ {
			for r := 0; r < out.Rows; r++ {
				for c := 0; c < out.Cols; c++ {
					buf = out.TimeSeries(r, c, tr, buf)
					center(buf)
					if p.ZScoreChannels {
						unitVariance(buf)
					}
					out.SetTimeSeries(r, c, tr, buf)
				}
			}
		}
	}

	// The mask is computed from the full (adjusted) tensor, once, and is
	// immutable for the rest of the run.
	mask := field.DetectBadChannels(out)
	return out, mask, nil
}

func center(series []float64) {
	mean, err := stats.Mean(series)
	if err != nil || math.IsNaN(mean) {
		return
	}
	for i := range series {
		series[i] -= mean
	}
}

func unitVariance(series []float64) {
	sd, err := stats.StandardDeviationSample(series)
	if err != nil || sd == 0 || math.IsNaN(sd) {
		return
	}
	for i := range series {
		series[i] /= sd
	}
}
