package app

import (
	"context"
	"math"

	"neurowave/domain/pattern"
	apperrors "neurowave/internal/errors"
	"neurowave/ports"
)

// TransitionResult quantifies how often one pattern type follows another
// relative to the base-rate null model.
type TransitionResult struct {
	// Observed and Expected are (initial type, next type, trial) count
	// tensors from the transition counter.
	Observed *pattern.TransitionCounts `json:"observed"`
	Expected *pattern.TransitionCounts `json:"expected"`

	// RateDiff is (observed-expected)/totalTimesteps*samplingRate per
	// cell, a transition-rate difference in events per second. Reporting
	// only; nothing downstream computes on it.
	RateDiff *pattern.TransitionCounts `json:"rate_diff"`

	// FractionalChange is (observed-expected)/expected averaged over
	// trials. Cells whose expected count is zero in a trial are undefined
	// for that trial and excluded from the average; a cell undefined in
	// every trial holds NaN.
	FractionalChange *pattern.TypeMatrix `json:"fractional_change"`

	// PValues and CorrectedPValues hold the paired-test probabilities and
	// their Bonferroni-corrected counterparts (raw p times the number of
	// (type,type) cells, deliberately uncapped). Both are nil when only
	// one trial exists: with a single observed/expected pair per cell
	// there is no variance to test, so the branch is skipped outright.
	PValues          *pattern.TypeMatrix `json:"p_values,omitempty"`
	CorrectedPValues *pattern.TypeMatrix `json:"corrected_p_values,omitempty"`
}

// TransitionAnalyzer computes observed-vs-expected transition statistics
// and paired significance tests across trials.
type TransitionAnalyzer struct {
	counter ports.TransitionCounter
	test    ports.PairedTest
}

// NewTransitionAnalyzer wires an analyzer to its counting and testing ports.
func NewTransitionAnalyzer(counter ports.TransitionCounter, test ports.PairedTest) *TransitionAnalyzer {
	return &TransitionAnalyzer{counter: counter, test: test}
}

// Analyze runs the full transition computation for one run's patterns.
func (a *TransitionAnalyzer) Analyze(ctx context.Context, patternsByTrial [][]pattern.Pattern, vocab pattern.Vocabulary, totalTimesteps int, p AnalysisParams) (*TransitionResult, error) {
	observed, expected, err := a.counter.Count(ctx, patternsByTrial, vocab, totalTimesteps, p.WindowAfter(), p.WindowBefore())
	if err != nil {
		return nil, apperrors.AdapterFailure("transition-counting", -1, err)
	}

	nTrials := len(patternsByTrial)
	res := &TransitionResult{
		Observed:         observed,
		Expected:         expected,
		RateDiff:         rateDiff(observed, expected, totalTimesteps, p.SamplingRate),
		FractionalChange: fractionalChange(observed, expected),
	}

	if nTrials > 1 {
		pvals, err := a.pairedPValues(observed, expected)
		if err != nil {
			return nil, err
		}
		res.PValues = pvals
		res.CorrectedPValues = pvals.Scale(float64(pvals.Cells()))
	}

	return res, nil
}

// rateDiff converts count differences to events per second.
func rateDiff(observed, expected *pattern.TransitionCounts, totalTimesteps int, samplingRate float64) *pattern.TransitionCounts {
	out := pattern.NewTransitionCounts(observed.Types, observed.Trials)
	n := len(observed.Types)
	for tr := 0; tr < observed.Trials; tr++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				d := observed.At(i, j, tr) - expected.At(i, j, tr)
				out.Set(i, j, tr, d/float64(totalTimesteps)*samplingRate)
			}
		}
	}
	return out
}

// fractionalChange averages (observed-expected)/expected over trials,
// skipping undefined cells. Division by a zero expected count is a
// recoverable local condition, not a run failure.
func fractionalChange(observed, expected *pattern.TransitionCounts) *pattern.TypeMatrix {
	out := pattern.NewTypeMatrix(observed.Types)
	n := len(observed.Types)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			defined := 0
			for tr := 0; tr < observed.Trials; tr++ {
				exp := expected.At(i, j, tr)
				if exp == 0 {
					continue
				}
				sum += (observed.At(i, j, tr) - exp) / exp
				defined++
			}
			if defined == 0 {
				out.Set(i, j, math.NaN())
				continue
			}
			out.Set(i, j, sum/float64(defined))
		}
	}
	return out
}

// pairedPValues runs the paired test per (type, type) cell, comparing the
// trial-wise observed counts against the trial-wise expected counts. The
// test is paired because each trial contributes one observed/expected pair.
func (a *TransitionAnalyzer) pairedPValues(observed, expected *pattern.TransitionCounts) (*pattern.TypeMatrix, error) {
	out := pattern.NewTypeMatrix(observed.Types)
	n := len(observed.Types)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p, err := a.test.PValue(observed.TrialSeries(i, j), expected.TrialSeries(i, j))
			if err != nil {
				return nil, apperrors.AdapterFailure("significance-testing", -1, err)
			}
			out.Set(i, j, p)
		}
	}
	return out, nil
}
