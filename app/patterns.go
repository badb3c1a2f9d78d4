package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"neurowave/domain/field"
	"neurowave/domain/pattern"
	apperrors "neurowave/internal/errors"
	"neurowave/ports"
)

// trialPatterns collects the pattern-extraction output, trial-indexed.
type trialPatterns struct {
	byTrial     [][]pattern.Pattern
	locations   [][]pattern.Location
	vocab       pattern.Vocabulary
	columnNames []string
}

// extractPatterns runs the detector once per trial. The velocity components
// come from the builder's tensor; the phase slab is the angle of the
// transform coefficients for that trial (not of the velocity field),
// truncated to the velocity's time extent.
//
// The type vocabulary is fixed by the first trial's detection. A later
// trial reporting a different vocabulary is a contract violation and fails
// the run rather than being silently merged.
func extractPatterns(ctx context.Context, velocity *field.VectorField, coeffs *field.ComplexField, detector ports.PatternDetector, p AnalysisParams) (*trialPatterns, error) {
	out := &trialPatterns{
		byTrial:   make([][]pattern.Pattern, velocity.Trials),
		locations: make([][]pattern.Location, velocity.Trials),
	}
	detections := make([]*ports.Detection, velocity.Trials)
	opts := p.DetectOptions()

	sem := semaphore.NewWeighted(p.Workers())
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for tr := 0; tr < velocity.Trials; tr++ {
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

			// Component and phase extraction are domain accessors, not
			// collaborators: a failure here is the core's own invariant
			// breaking, not an adapter fault.
			vx, vy, err := velocity.TrialComponents(tr)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = apperrors.Wrapf(err, "pattern inputs for trial %d", tr)
				}
				mu.Unlock()
				return
			}
			phase, err := coeffs.PhaseSlab(tr, velocity.Timesteps)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = apperrors.Wrapf(err, "pattern inputs for trial %d", tr)
				}
				mu.Unlock()
				return
			}
			det, err := detector.Detect(ctx, vx, vy, phase, opts)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = apperrors.AdapterFailure("pattern-extraction", tr, err)
				}
				mu.Unlock()
				return
			}
			detections[tr] = det
		}(tr)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	// Vocabulary consistency check runs after the barrier so the failure
	// is deterministic regardless of scheduling.
	for tr, det := range detections {
		if tr == 0 {
			out.vocab = det.Types
			out.columnNames = det.ColumnNames
		} else if !out.vocab.Equal(det.Types) {
			return nil, apperrors.VocabularyMismatch(tr,
				fmt.Errorf("%w: trial 0 reported %v, trial %d reported %v",
					pattern.ErrVocabularyMismatch, out.vocab, tr, det.Types))
		}
		// The detector works on a single trial and leaves the trial index
		// to the loop.
		for i := range det.Patterns {
			det.Patterns[i].Trial = tr
		}
		out.byTrial[tr] = det.Patterns
		out.locations[tr] = det.Locations
	}

	return out, nil
}
