package ports

import (
	"context"

	"neurowave/domain/pattern"
)

// TransitionCounter computes observed and null-model expected counts of
// pattern-type transitions. A transition is one pattern instance ending and
// another starting within the bounded window [end-windowBefore,
// end+windowAfter]. Expected counts reflect each type's overall base rate,
// independent of ordering.
type TransitionCounter interface {
	Count(ctx context.Context, patternsByTrial [][]pattern.Pattern, vocab pattern.Vocabulary,
		totalTimesteps, windowAfter, windowBefore int) (observed, expected *pattern.TransitionCounts, err error)
}

// PairedTest compares two equal-length paired samples and returns the
// probability of seeing a difference at least as large under the null of no
// difference.
type PairedTest interface {
	PValue(a, b []float64) (float64, error)
}
