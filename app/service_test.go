package app_test

import (
	"context"
	"errors"
	"testing"

	"neurowave/adapters/detect"
	"neurowave/adapters/flow"
	"neurowave/adapters/progress"
	"neurowave/adapters/stats"
	"neurowave/adapters/transform"
	"neurowave/adapters/visual"
	"neurowave/app"
	"neurowave/domain/field"
	apperrors "neurowave/internal/errors"
	"neurowave/internal/testkit"
)

func newService() *app.AnalysisService {
	return app.NewAnalysisService(
		transform.NewMorlet(),
		flow.NewHornSchunck(),
		detect.NewCriticalPointDetector(),
		stats.NewBaseRateCounter(),
		stats.NewPairedTTest(),
		progress.NopSink{},
		visual.Discard{},
	)
}

func TestRun_PlaneWaveRecording(t *testing.T) {
	rec := testkit.PlaneWaveTensor(6, 6, 300, 2, 200, 8, 6)
	p := app.DefaultParams(200, 8)
	p.MaxParallelTrials = 2

	res, err := newService().Run(context.Background(), rec, p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.RunID == "" {
		t.Error("missing run identifier")
	}
	if res.Timesteps != 299 {
		t.Errorf("usable timesteps = %d, want 299", res.Timesteps)
	}
	if len(res.PatternTypes) != 7 {
		t.Errorf("pattern vocabulary = %v, want the 7 canonical types", res.PatternTypes)
	}
	if len(res.Patterns) != 2 || len(res.Locations) != 2 {
		t.Fatalf("trial buckets: %d patterns, %d locations, want 2 each", len(res.Patterns), len(res.Locations))
	}
	for tr := range res.Patterns {
		if len(res.Patterns[tr]) != len(res.Locations[tr]) {
			t.Errorf("trial %d: %d patterns but %d locations", tr, len(res.Patterns[tr]), len(res.Locations[tr]))
		}
	}
	if res.Transitions == nil || res.Transitions.Observed == nil || res.Transitions.Expected == nil {
		t.Fatal("transition statistics missing")
	}
	if res.Transitions.PValues == nil {
		t.Error("two-trial run must include significance matrices")
	}
	if res.Coefficients == nil || res.Velocity == nil {
		t.Error("full run must keep the coefficient and velocity tensors")
	}
	if res.MeanConvergenceSteps <= 0 {
		t.Errorf("mean convergence steps = %v, want positive", res.MeanConvergenceSteps)
	}
}

func TestRun_AllZeroRecordingFlagsGridAndCompletes(t *testing.T) {
	// Every channel is constant, so the whole grid is excluded from flow
	// estimation. The run must still finish without error.
	rec := testkit.ZeroTensor(4, 4, 50, 3)
	p := app.DefaultParams(100, 20)
	p.WaveletCycles = 3
	p.MaxParallelTrials = 1

	res, err := newService().Run(context.Background(), rec, p)
	if err != nil {
		t.Fatalf("Run failed on degenerate input: %v", err)
	}
	if len(res.BadChannels) != 16 {
		t.Errorf("flagged %d bad channels, want all 16", len(res.BadChannels))
	}
}

func TestRun_OnlyPatternsOmitsTensors(t *testing.T) {
	rec := testkit.PlaneWaveTensor(5, 5, 200, 1, 200, 8, 5)
	p := app.DefaultParams(200, 8)
	p.OnlyPatterns = true

	res, err := newService().Run(context.Background(), rec, p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Coefficients != nil || res.Velocity != nil {
		t.Error("patterns-only run must drop the coefficient and velocity tensors")
	}
	if res.Transitions == nil {
		t.Error("patterns-only run must still include transition statistics")
	}
	if res.Transitions.PValues != nil {
		t.Error("single-trial run must skip significance matrices")
	}
}

// truncatingTransform drops one timestep, violating the transform
// contract of preserving every extent.
type truncatingTransform struct{}

func (truncatingTransform) Decompose(ctx context.Context, rec *field.ScalarField, samplingRate, centerFreq, bandwidth float64) (*field.ComplexField, error) {
	return field.NewComplexField(rec.Rows, rec.Cols, rec.Timesteps-1, rec.Trials)
}

func TestRun_RejectsTransformShapeDrift(t *testing.T) {
	service := app.NewAnalysisService(
		truncatingTransform{},
		flow.NewHornSchunck(),
		detect.NewCriticalPointDetector(),
		stats.NewBaseRateCounter(),
		stats.NewPairedTTest(),
		progress.NopSink{},
		visual.Discard{},
	)

	rec := testkit.NoiseTensor(3, 3, 20, 1, 9)
	p := app.DefaultParams(100, 20)
	p.WaveletCycles = 3

	_, err := service.Run(context.Background(), rec, p)
	if err == nil {
		t.Fatal("expected a transform that shifts the time base to fail the run")
	}
	if apperrors.GetCode(err) != apperrors.CodeAdapterFailure {
		t.Errorf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeAdapterFailure)
	}
	if !errors.Is(err, field.ErrDimensionMismatch) {
		t.Errorf("error does not report the extent mismatch: %v", err)
	}
}

func TestRun_RejectsInvalidParams(t *testing.T) {
	rec := testkit.ZeroTensor(3, 3, 20, 1)
	p := app.DefaultParams(100, 60) // above Nyquist

	_, err := newService().Run(context.Background(), rec, p)
	if err == nil {
		t.Fatal("expected parameter validation to fail")
	}
	if apperrors.GetCode(err) != apperrors.CodeConfigInvalid {
		t.Errorf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeConfigInvalid)
	}
}
