package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// PairedTTest implements ports.PairedTest with a two-sided paired
// Student's t-test on the per-trial differences.
type PairedTTest struct{}

// NewPairedTTest creates the test adapter.
func NewPairedTTest() *PairedTTest {
	return &PairedTTest{}
}

// PValue returns the two-sided probability of the observed mean difference
// under the null of zero difference. With identical samples the difference
// variance is zero and the p-value is exactly 1; a zero-variance, non-zero
// difference is perfectly consistent evidence and returns 0.
func (t *PairedTTest) PValue(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("paired samples differ in length: %d vs %d", len(a), len(b))
	}
	if len(a) < 2 {
		return 0, fmt.Errorf("paired test needs at least 2 pairs, got %d", len(a))
	}

	diffs := make([]float64, len(a))
	for i := range a {
		diffs[i] = a[i] - b[i]
	}

	mean, err := mstats.Mean(diffs)
	if err != nil {
		return 0, err
	}
	sd, err := mstats.StandardDeviationSample(diffs)
	if err != nil {
		return 0, err
	}

	if sd == 0 {
		if mean == 0 {
			return 1.0, nil
		}
		return 0.0, nil
	}

	n := float64(len(diffs))
	tStat := mean / (sd / math.Sqrt(n))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}
	p := 2 * dist.CDF(-math.Abs(tStat))
	if p > 1 {
		p = 1
	}
	return p, nil
}
