package pattern

import (
	"errors"
	"fmt"
)

// Canonical pattern type labels produced by the detector. The vocabulary
// and its ordering are fixed for a run; the analysis layer only relies on
// type identity and temporal ordering, never on detector internals.
const (
	TypePlaneWave = "planeWave"
	TypeSynchrony = "synchrony"
	TypeSource    = "source"
	TypeSink      = "sink"
	TypeSpiralIn  = "spiralIn"
	TypeSpiralOut = "spiralOut"
	TypeSaddle    = "saddle"
)

var (
	ErrVocabularyMismatch = errors.New("pattern type vocabulary differs across trials")
	ErrUnknownType        = errors.New("pattern type not in vocabulary")
)

// Pattern is one detected spatiotemporal motion feature within a single
// trial. Times are sample indices into the velocity field's time axis.
type Pattern struct {
	Type      string `json:"type"`
	Trial     int    `json:"trial"`
	StartTime int    `json:"start_time"`
	EndTime   int    `json:"end_time"`
}

// Duration returns the pattern length in samples, inclusive of both ends.
func (p Pattern) Duration() int { return p.EndTime - p.StartTime + 1 }

// Location is the spatial anchor of a detected pattern, in fractional grid
// coordinates (critical points rarely sit exactly on a cell).
type Location struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// Vocabulary is the ordered set of pattern type labels for a run.
type Vocabulary []string

// Equal reports whether two vocabularies agree in content and order.
func (v Vocabulary) Equal(other Vocabulary) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// Index returns the canonical position of a type label.
func (v Vocabulary) Index(label string) (int, error) {
	for i, t := range v {
		if t == label {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownType, label)
}

// TransitionCounts is a (initial type, next type, trial) tensor of
// transition counts, used for both observed and null-model expected counts.
type TransitionCounts struct {
	Types  Vocabulary
	Trials int

	data []float64
}

// NewTransitionCounts allocates a zeroed count tensor.
func NewTransitionCounts(types Vocabulary, trials int) *TransitionCounts {
	n := len(types)
	return &TransitionCounts{
		Types:  types,
		Trials: trials,
		data:   make([]float64, n*n*trials),
	}
}

func (tc *TransitionCounts) index(from, to, trial int) int {
	n := len(tc.Types)
	return (trial*n+from)*n + to
}

// At returns the count for (initial type, next type, trial).
func (tc *TransitionCounts) At(from, to, trial int) float64 {
	return tc.data[tc.index(from, to, trial)]
}

// Set writes the count for (initial type, next type, trial).
func (tc *TransitionCounts) Set(from, to, trial int, v float64) {
	tc.data[tc.index(from, to, trial)] = v
}

// Add increments the count for (initial type, next type, trial).
func (tc *TransitionCounts) Add(from, to, trial int, v float64) {
	tc.data[tc.index(from, to, trial)] += v
}

// TrialSeries returns the per-trial counts for one (from, to) cell, the
// paired sample handed to the significance test.
func (tc *TransitionCounts) TrialSeries(from, to int) []float64 {
	out := make([]float64, tc.Trials)
	for tr := 0; tr < tc.Trials; tr++ {
		out[tr] = tc.At(from, to, tr)
	}
	return out
}

// TypeMatrix is a (initial type, next type) matrix of derived statistics:
// p-values, corrected p-values, or trial-averaged fractional changes.
type TypeMatrix struct {
	Types Vocabulary

	data []float64
}

// NewTypeMatrix allocates a zeroed matrix for the given vocabulary.
func NewTypeMatrix(types Vocabulary) *TypeMatrix {
	n := len(types)
	return &TypeMatrix{Types: types, data: make([]float64, n*n)}
}

// At returns the value for (initial type, next type).
func (m *TypeMatrix) At(from, to int) float64 { return m.data[from*len(m.Types)+to] }

// Set writes the value for (initial type, next type).
func (m *TypeMatrix) Set(from, to int, v float64) { m.data[from*len(m.Types)+to] = v }

// Cells returns the total number of (type, type) cells, the Bonferroni
// correction factor.
func (m *TypeMatrix) Cells() int { return len(m.Types) * len(m.Types) }

// Scale returns a new matrix with every cell multiplied by k.
func (m *TypeMatrix) Scale(k float64) *TypeMatrix {
	out := NewTypeMatrix(m.Types)
	for i := range m.data {
		out.data[i] = m.data[i] * k
	}
	return out
}
