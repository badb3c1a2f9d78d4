package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"neurowave/domain/field"
	"neurowave/domain/pattern"
	apperrors "neurowave/internal/errors"
	"neurowave/ports"
)

// Result packages everything one analysis run produces. It is the stable
// contract between the core and any downstream reporting or export layer.
type Result struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	// BadChannels are the flat spatial indices excluded from flow
	// estimation.
	BadChannels []int `json:"bad_channels"`

	// Timesteps is the usable time extent of the velocity field
	// (coefficient timesteps - 1).
	Timesteps int `json:"timesteps"`

	PatternTypes pattern.Vocabulary `json:"pattern_types"`
	ColumnNames  []string           `json:"column_names"`

	// Patterns and Locations are trial-indexed, matched pairwise.
	Patterns  [][]pattern.Pattern  `json:"patterns"`
	Locations [][]pattern.Location `json:"locations"`

	Transitions *TransitionResult `json:"transitions"`

	// MeanConvergenceSteps is the mean over trials of the flow solver's
	// per-trial mean iteration counts.
	MeanConvergenceSteps float64 `json:"mean_convergence_steps"`

	Params       AnalysisParams `json:"params"`
	SamplingRate float64        `json:"sampling_rate"`
	Duration     time.Duration  `json:"duration"`

	// Coefficients and Velocity are nil when OnlyPatterns was requested,
	// to bound memory on large recordings.
	Coefficients *field.ComplexField `json:"-"`
	Velocity     *field.VectorField  `json:"-"`
}

// AnalysisService orchestrates the full pipeline: preprocessing,
// time-frequency decomposition, velocity estimation, pattern extraction,
// transition statistics and result assembly.
type AnalysisService struct {
	transform  ports.TransformPort
	builder    *VelocityFieldBuilder
	detector   ports.PatternDetector
	analyzer   *TransitionAnalyzer
	progress   ports.ProgressSink
	visualizer ports.Visualizer
}

// NewAnalysisService wires the pipeline. visualizer may be nil when the
// SVD stage is disabled or suppressed.
func NewAnalysisService(transform ports.TransformPort, flow ports.FlowEstimator,
	detector ports.PatternDetector, counter ports.TransitionCounter,
	test ports.PairedTest, progress ports.ProgressSink, visualizer ports.Visualizer) *AnalysisService {
	return &AnalysisService{
		transform:  transform,
		builder:    NewVelocityFieldBuilder(flow, progress),
		detector:   detector,
		analyzer:   NewTransitionAnalyzer(counter, test),
		progress:   progress,
		visualizer: visualizer,
	}
}

// Run executes one complete analysis of a recording tensor. Structural and
// adapter-level failures abort the run with the failing stage (and trial,
// when applicable) attached; there are no partial results.
func (s *AnalysisService) Run(ctx context.Context, rec *field.ScalarField, p AnalysisParams) (*Result, error) {
	start := time.Now()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.progress.Report("preprocessing recording tensor")
	adjusted, badChannels, err := Preprocess(rec, p)
	if err != nil {
		return nil, err
	}

	s.progress.Report("computing time-frequency decomposition")
	coeffs, err := s.transform.Decompose(ctx, adjusted, p.SamplingRate, p.CenterFrequency, p.WaveletCycles)
	if err != nil {
		return nil, apperrors.AdapterFailure("transform", -1, err)
	}
	if coeffs.Rows != adjusted.Rows || coeffs.Cols != adjusted.Cols ||
		coeffs.Timesteps != adjusted.Timesteps || coeffs.Trials != adjusted.Trials {
		return nil, apperrors.AdapterFailure("transform", -1,
			fmt.Errorf("%w: coefficient extents differ from input", field.ErrDimensionMismatch))
	}

	s.progress.Report("estimating velocity fields")
	velocity, meanSteps, err := s.builder.Build(ctx, coeffs, badChannels, p)
	if err != nil {
		return nil, err
	}

	s.progress.Report("extracting patterns")
	extracted, err := extractPatterns(ctx, velocity, coeffs, s.detector, p)
	if err != nil {
		return nil, err
	}

	s.progress.Report("analyzing pattern transitions")
	transitions, err := s.analyzer.Analyze(ctx, extracted.byTrial, extracted.vocab, velocity.Timesteps, p)
	if err != nil {
		return nil, err
	}

	if p.PerformSVD && s.visualizer != nil {
		s.progress.Report("rendering velocity field decomposition")
		if err := s.visualizer.Render(ctx, velocity, p.NSVDModes, p.UseComplexSVD); err != nil {
			return nil, apperrors.AdapterFailure("visualization", -1, err)
		}
	}

	res := &Result{
		RunID:                newRunID(),
		CreatedAt:            time.Now(),
		BadChannels:          badChannels.Indices(),
		Timesteps:            velocity.Timesteps,
		PatternTypes:         extracted.vocab,
		ColumnNames:          extracted.columnNames,
		Patterns:             extracted.byTrial,
		Locations:            extracted.locations,
		Transitions:          transitions,
		MeanConvergenceSteps: meanSteps,
		Params:               p,
		SamplingRate:         p.SamplingRate,
		Duration:             time.Since(start),
	}
	if !p.OnlyPatterns {
		res.Coefficients = coeffs
		res.Velocity = velocity
	}

	s.progress.Report(fmt.Sprintf("analysis complete in %s", res.Duration.Round(time.Millisecond)))
	return res, nil
}

// newRunID returns a time-ordered identifier, falling back to a random one
// when v7 generation is unavailable.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
