package app

import (
	"context"
	"sync"
	"testing"

	"neurowave/domain/field"
	"neurowave/domain/pattern"
	apperrors "neurowave/internal/errors"
	"neurowave/ports"
)

// stubDetector reports a canned detection. When driftTypes is set the
// vocabulary changes after the first call, simulating a misbehaving
// classifier.
type stubDetector struct {
	mu         sync.Mutex
	calls      int
	driftTypes bool
}

func (s *stubDetector) Detect(ctx context.Context, vx, vy, phase *field.Slab, opts ports.DetectOptions) (*ports.Detection, error) {
	s.mu.Lock()
	s.calls++
	defer s.mu.Unlock()
	types := pattern.Vocabulary{pattern.TypeSource, pattern.TypeSink}
	if s.driftTypes && s.calls > 1 {
		types = pattern.Vocabulary{pattern.TypeSink, pattern.TypeSource}
	}
	return &ports.Detection{
		Patterns: []pattern.Pattern{
			{Type: pattern.TypeSource, StartTime: 0, EndTime: 4},
		},
		Locations:   []pattern.Location{{Row: 1, Col: 1}},
		Types:       types,
		ColumnNames: []string{"type", "trial", "startTime", "endTime", "row", "col"},
	}, nil
}

func patternFixtures(t *testing.T, trials int) (*field.VectorField, *field.ComplexField) {
	t.Helper()
	velocity, err := field.NewVectorField(3, 3, 5, trials)
	if err != nil {
		t.Fatalf("NewVectorField failed: %v", err)
	}
	coeffs, err := field.NewComplexField(3, 3, 6, trials)
	if err != nil {
		t.Fatalf("NewComplexField failed: %v", err)
	}
	return velocity, coeffs
}

func TestExtractPatterns_StampsTrialIndex(t *testing.T) {
	velocity, coeffs := patternFixtures(t, 3)
	det := &stubDetector{}

	out, err := extractPatterns(context.Background(), velocity, coeffs, det, DefaultParams(1000, 8))
	if err != nil {
		t.Fatalf("extractPatterns failed: %v", err)
	}
	if len(out.byTrial) != 3 {
		t.Fatalf("got %d trial buckets, want 3", len(out.byTrial))
	}
	for tr, ps := range out.byTrial {
		if len(ps) != 1 {
			t.Fatalf("trial %d has %d patterns, want 1", tr, len(ps))
		}
		if ps[0].Trial != tr {
			t.Errorf("trial %d pattern stamped with trial %d", tr, ps[0].Trial)
		}
	}
	if !out.vocab.Equal(pattern.Vocabulary{pattern.TypeSource, pattern.TypeSink}) {
		t.Errorf("vocabulary = %v", out.vocab)
	}
	if len(out.columnNames) != 6 {
		t.Errorf("column names = %v", out.columnNames)
	}
}

func TestExtractPatterns_VocabularyMismatchFailsRun(t *testing.T) {
	velocity, coeffs := patternFixtures(t, 2)
	p := DefaultParams(1000, 8)
	// Serialize the workers so the drifting stub misreports a later trial,
	// not trial 0.
	p.MaxParallelTrials = 1

	_, err := extractPatterns(context.Background(), velocity, coeffs, &stubDetector{driftTypes: true}, p)
	if err == nil {
		t.Fatal("expected vocabulary mismatch to fail the run")
	}
	if apperrors.GetCode(err) != apperrors.CodeVocabularyMismatch {
		t.Errorf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeVocabularyMismatch)
	}
}

func TestExtractPatterns_DomainFailureIsInternal(t *testing.T) {
	// A velocity field longer than the coefficient tensor breaks the
	// core's own alignment invariant; that is not an adapter fault.
	velocity, err := field.NewVectorField(3, 3, 6, 1)
	if err != nil {
		t.Fatalf("NewVectorField failed: %v", err)
	}
	coeffs, err := field.NewComplexField(3, 3, 5, 1)
	if err != nil {
		t.Fatalf("NewComplexField failed: %v", err)
	}

	_, err = extractPatterns(context.Background(), velocity, coeffs, &stubDetector{}, DefaultParams(1000, 8))
	if err == nil {
		t.Fatal("expected misaligned inputs to fail")
	}
	if apperrors.GetCode(err) != apperrors.CodeInternalError {
		t.Errorf("error code = %s, want %s (not an adapter fault)", apperrors.GetCode(err), apperrors.CodeInternalError)
	}
}
