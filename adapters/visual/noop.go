// Package visual holds Visualizer implementations. The core consumes no
// return value from visualization; this package ships only the discard
// renderer, keeping rendering concerns out of the analysis library.
package visual

import (
	"context"

	"neurowave/domain/field"
)

// Discard implements ports.Visualizer and renders nothing.
type Discard struct{}

// Render is a no-op.
func (Discard) Render(ctx context.Context, velocity *field.VectorField, modes int, useComplexModes bool) error {
	return nil
}
