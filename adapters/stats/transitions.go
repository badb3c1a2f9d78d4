package stats

import (
	"context"
	"fmt"

	"neurowave/domain/pattern"
)

// BaseRateCounter implements ports.TransitionCounter. Observed counts pair
// every pattern instance ending at time e with every other instance
// starting inside [e-windowBefore, e+windowAfter]. Expected counts come
// from a base-rate null model: if type B starts nB times over T timesteps,
// a window of W samples is expected to contain nB*W/T of its starts
// regardless of what precedes it, so the expected A->B count is
// nA*nB*W/T per trial. On the diagonal the observed loop excludes
// self-pairs, so the null uses nA*(nA-1) ordered pairs instead.
type BaseRateCounter struct{}

// NewBaseRateCounter creates the counting adapter.
func NewBaseRateCounter() *BaseRateCounter {
	return &BaseRateCounter{}
}

// Count computes observed and expected transition-count tensors indexed by
// (initial type, next type, trial).
func (c *BaseRateCounter) Count(ctx context.Context, patternsByTrial [][]pattern.Pattern, vocab pattern.Vocabulary,
	totalTimesteps, windowAfter, windowBefore int) (*pattern.TransitionCounts, *pattern.TransitionCounts, error) {
	if totalTimesteps < 1 {
		return nil, nil, fmt.Errorf("total timesteps must be positive, got %d", totalTimesteps)
	}
	if windowAfter < 0 || windowBefore < 0 {
		return nil, nil, fmt.Errorf("transition windows must be non-negative, got after=%d before=%d", windowAfter, windowBefore)
	}

	nTrials := len(patternsByTrial)
	observed := pattern.NewTransitionCounts(vocab, nTrials)
	expected := pattern.NewTransitionCounts(vocab, nTrials)
	window := float64(windowAfter + windowBefore)

	for tr, patterns := range patternsByTrial {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		// Base rates per type in this trial.
		counts := make([]float64, len(vocab))
		typeIdx := make([]int, len(patterns))
		for i, p := range patterns {
			idx, err := vocab.Index(p.Type)
			if err != nil {
				return nil, nil, fmt.Errorf("trial %d: %w", tr, err)
			}
			typeIdx[i] = idx
			counts[idx]++
		}

		for i, p := range patterns {
			lo := p.EndTime - windowBefore
			hi := p.EndTime + windowAfter
			for j, q := range patterns {
				if i == j {
					continue
				}
				if q.StartTime >= lo && q.StartTime <= hi {
					observed.Add(typeIdx[i], typeIdx[j], tr, 1)
				}
			}
		}

		for a := range vocab {
			for b := range vocab {
				pairs := counts[a] * counts[b]
				if a == b {
					// The observed loop never pairs an instance with
					// itself, so the same-type null counts ordered pairs
					// of distinct instances.
					pairs = counts[a] * (counts[a] - 1)
				}
				expected.Set(a, b, tr, pairs*window/float64(totalTimesteps))
			}
		}
	}

	return observed, expected, nil
}
