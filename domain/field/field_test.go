package field

import (
	"errors"
	"math"
	"testing"
)

func TestNewScalarField_RejectsNonPositiveExtents(t *testing.T) {
	if _, err := NewScalarField(0, 4, 10, 2); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape for zero rows, got %v", err)
	}
	if _, err := NewScalarField(4, 4, 10, 0); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape for zero trials, got %v", err)
	}
}

func TestScalarField_ValidateForFlow(t *testing.T) {
	rec, err := NewScalarField(4, 4, 1, 2)
	if err != nil {
		t.Fatalf("NewScalarField failed: %v", err)
	}
	if err := rec.ValidateForFlow(); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape for single timestep, got %v", err)
	}

	rec, _ = NewScalarField(4, 4, 2, 2)
	if err := rec.ValidateForFlow(); err != nil {
		t.Errorf("two timesteps should validate, got %v", err)
	}
}

func TestScalarField_RoundTrip(t *testing.T) {
	rec, _ := NewScalarField(3, 5, 7, 2)
	rec.Set(2, 4, 6, 1, 42.5)
	if got := rec.At(2, 4, 6, 1); got != 42.5 {
		t.Errorf("At returned %v, want 42.5", got)
	}
	// Neighbors must be untouched.
	if got := rec.At(2, 4, 6, 0); got != 0 {
		t.Errorf("sibling trial cell modified: %v", got)
	}
	if got := rec.At(2, 4, 5, 1); got != 0 {
		t.Errorf("sibling time cell modified: %v", got)
	}
}

func TestScalarField_CloneIsIndependent(t *testing.T) {
	rec, _ := NewScalarField(2, 2, 3, 1)
	rec.Set(0, 0, 0, 0, 1)
	cp := rec.Clone()
	cp.Set(0, 0, 0, 0, 9)
	if rec.At(0, 0, 0, 0) != 1 {
		t.Error("mutating the clone changed the original")
	}
}

func TestVector_MagnitudeAngle(t *testing.T) {
	v := Vector{X: 3, Y: 4}
	if got := v.Magnitude(); got != 5 {
		t.Errorf("Magnitude = %v, want 5", got)
	}
	up := Vector{X: 0, Y: 1}
	if got := up.Angle(); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("Angle = %v, want pi/2", got)
	}
}

func TestVectorField_TrialComponentsRoundTrip(t *testing.T) {
	vf, err := NewVectorField(3, 3, 4, 2)
	if err != nil {
		t.Fatalf("NewVectorField failed: %v", err)
	}

	vx := NewSlab(3, 3, 4)
	vy := NewSlab(3, 3, 4)
	vx.Set(1, 2, 3, 0.5)
	vy.Set(1, 2, 3, -0.25)

	if err := vf.SetTrialComponents(1, vx, vy); err != nil {
		t.Fatalf("SetTrialComponents failed: %v", err)
	}
	got := vf.At(1, 2, 3, 1)
	if got.X != 0.5 || got.Y != -0.25 {
		t.Errorf("composed vector = %+v, want {0.5 -0.25}", got)
	}
	// Trial 0 must stay untouched: disjoint writes are the concurrency
	// contract of the builder.
	if zero := vf.At(1, 2, 3, 0); zero.X != 0 || zero.Y != 0 {
		t.Errorf("trial 0 modified by trial 1 write: %+v", zero)
	}

	gx, gy, err := vf.TrialComponents(1)
	if err != nil {
		t.Fatalf("TrialComponents failed: %v", err)
	}
	if gx.At(1, 2, 3) != 0.5 || gy.At(1, 2, 3) != -0.25 {
		t.Error("TrialComponents did not round-trip the composed values")
	}
}

func TestVectorField_SetTrialComponentsErrors(t *testing.T) {
	vf, _ := NewVectorField(3, 3, 4, 2)
	vx := NewSlab(3, 3, 4)
	vy := NewSlab(3, 3, 4)

	if err := vf.SetTrialComponents(2, vx, vy); !errors.Is(err, ErrTrialOutOfRange) {
		t.Errorf("expected ErrTrialOutOfRange, got %v", err)
	}
	small := NewSlab(2, 3, 4)
	if err := vf.SetTrialComponents(0, small, vy); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestComplexField_PhaseAndAmplitude(t *testing.T) {
	cf, err := NewComplexField(2, 2, 3, 1)
	if err != nil {
		t.Fatalf("NewComplexField failed: %v", err)
	}
	cf.Set(0, 1, 2, 0, complex(0, 2))
	if got := cf.Amplitude(0, 1, 2, 0); got != 2 {
		t.Errorf("Amplitude = %v, want 2", got)
	}
	if got := cf.Phase(0, 1, 2, 0); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("Phase = %v, want pi/2", got)
	}
	// Zero coefficient has no defined angle; the accessor pins it to 0.
	if got := cf.Phase(0, 0, 0, 0); got != 0 {
		t.Errorf("Phase of zero coefficient = %v, want 0", got)
	}
}

func TestComplexField_PhaseSlabTruncates(t *testing.T) {
	cf, _ := NewComplexField(2, 2, 5, 2)
	cf.Set(1, 1, 3, 1, complex(1, 1))

	s, err := cf.PhaseSlab(1, 4)
	if err != nil {
		t.Fatalf("PhaseSlab failed: %v", err)
	}
	if s.Timesteps != 4 {
		t.Errorf("slab has %d timesteps, want 4", s.Timesteps)
	}
	if got := s.At(1, 1, 3); math.Abs(got-math.Pi/4) > 1e-12 {
		t.Errorf("slab phase = %v, want pi/4", got)
	}

	if _, err := cf.PhaseSlab(2, 4); !errors.Is(err, ErrTrialOutOfRange) {
		t.Errorf("expected ErrTrialOutOfRange, got %v", err)
	}
	if _, err := cf.PhaseSlab(0, 6); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape for oversized slab, got %v", err)
	}
}

func TestDetectBadChannels(t *testing.T) {
	rec, _ := NewScalarField(2, 2, 4, 2)
	// (0,0): healthy signal in both trials.
	for tr := 0; tr < 2; tr++ {
		for ts := 0; ts < 4; ts++ {
			rec.Set(0, 0, ts, tr, float64(ts+tr))
		}
	}
	// (0,1): NaN in one sample of one trial.
	rec.Set(0, 1, 0, 0, 1)
	rec.Set(0, 1, 1, 0, 2)
	rec.Set(0, 1, 2, 0, math.NaN())
	rec.Set(0, 1, 3, 0, 4)
	for ts := 0; ts < 4; ts++ {
		rec.Set(0, 1, ts, 1, float64(ts))
	}
	// (1,0): constant non-zero everywhere.
	for tr := 0; tr < 2; tr++ {
		for ts := 0; ts < 4; ts++ {
			rec.Set(1, 0, ts, tr, 7)
		}
	}
	// (1,1): varies across trials but constant within... values differ
	// between trials, so the channel is not constant over the full axis.
	for tr := 0; tr < 2; tr++ {
		for ts := 0; ts < 4; ts++ {
			rec.Set(1, 1, ts, tr, float64(tr))
		}
	}

	mask := DetectBadChannels(rec)
	if mask.Bad(0, 0) {
		t.Error("healthy channel flagged bad")
	}
	if !mask.Bad(0, 1) {
		t.Error("NaN channel not flagged")
	}
	if !mask.Bad(1, 0) {
		t.Error("constant channel not flagged")
	}
	if mask.Bad(1, 1) {
		t.Error("channel varying across trials flagged bad")
	}
	if got := mask.Indices(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Indices = %v, want [1 2]", got)
	}
}

func TestDetectBadChannels_AllZero(t *testing.T) {
	rec, _ := NewScalarField(4, 4, 50, 3)
	mask := DetectBadChannels(rec)
	if mask.Count() != 16 {
		t.Errorf("all-zero tensor flagged %d channels, want all 16", mask.Count())
	}
}
