package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"

	"neurowave/domain/field"
	apperrors "neurowave/internal/errors"
	"neurowave/ports"
)

// VelocityFieldBuilder drives the optical-flow estimator over all trials,
// composes the results into a velocity tensor and aggregates convergence
// diagnostics.
type VelocityFieldBuilder struct {
	flow     ports.FlowEstimator
	progress ports.ProgressSink
}

// NewVelocityFieldBuilder wires a builder to a flow estimator and progress sink.
func NewVelocityFieldBuilder(flow ports.FlowEstimator, progress ports.ProgressSink) *VelocityFieldBuilder {
	return &VelocityFieldBuilder{flow: flow, progress: progress}
}

// Build estimates the velocity field for every trial. Trials do not
// interact: each worker writes only its own trial's slice of the
// pre-allocated tensor and its own cell of the convergence array, so the
// loop runs under a bounded worker pool without locking. The returned
// scalar is the mean over trials of the per-trial mean iteration counts; an
// unexpectedly high value signals the solver is failing to converge.
//
// Any per-trial estimator failure aborts the whole build: silently skipping
// a trial would corrupt every trial-count-dependent statistic downstream.
func (b *VelocityFieldBuilder) Build(ctx context.Context, coeffs *field.ComplexField, bad *field.ChannelMask, p AnalysisParams) (*field.VectorField, float64, error) {
	if coeffs.Timesteps < 2 {
		return nil, 0, apperrors.InvalidShape(
			field.NewShapeError("velocity needs at least 2 coefficient timesteps, got %d", coeffs.Timesteps))
	}

	velocity, err := field.NewVectorField(coeffs.Rows, coeffs.Cols, coeffs.Timesteps-1, coeffs.Trials)
	if err != nil {
		return nil, 0, apperrors.InvalidShape(err)
	}

	trialMeans := make([]float64, coeffs.Trials)
	opts := p.FlowOptions()

	sem := semaphore.NewWeighted(p.Workers())
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for tr := 0; tr < coeffs.Trials; tr++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(tr int) {
			defer wg.Done()
			defer sem.Release(1)

			vx, vy, steps, err := b.flow.EstimateTrial(ctx, coeffs, tr, bad, opts)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = apperrors.AdapterFailure("optical-flow", tr, err)
				}
				mu.Unlock()
				return
			}
			if len(steps) != velocity.Timesteps {
				mu.Lock()
				if firstErr == nil {
					firstErr = apperrors.AdapterFailure("optical-flow", tr,
						fmt.Errorf("estimator returned %d convergence entries, want %d", len(steps), velocity.Timesteps))
				}
				mu.Unlock()
				return
			}
			if err := velocity.SetTrialComponents(tr, vx, vy); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = apperrors.AdapterFailure("optical-flow", tr, err)
				}
				mu.Unlock()
				return
			}
			trialMeans[tr] = meanSteps(steps)
		}(tr)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, 0, firstErr
	}

	grandMean, err := stats.Mean(trialMeans)
	if err != nil {
		grandMean = 0
	}
	b.progress.Report(fmt.Sprintf("optical flow converged in %.1f steps on average", grandMean))

	return velocity, grandMean, nil
}

func meanSteps(steps []int) float64 {
	if len(steps) == 0 {
		return 0
	}
	vals := make([]float64, len(steps))
	for i, s := range steps {
		vals[i] = float64(s)
	}
	m, err := stats.Mean(vals)
	if err != nil {
		return 0
	}
	return m
}
