package ports

import (
	"context"

	"neurowave/domain/field"
)

// Visualizer renders a modal decomposition of the velocity field. Only
// invoked when the SVD stage is enabled and visualization is not
// suppressed; the analysis consumes no return value from it.
type Visualizer interface {
	Render(ctx context.Context, velocity *field.VectorField, modes int, useComplexModes bool) error
}
