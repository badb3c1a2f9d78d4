package field

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInvalidShape covers malformed tensors: wrong rank, non-positive
	// extents, or too few time samples to estimate velocity.
	ErrInvalidShape = errors.New("invalid tensor shape")

	ErrDimensionMismatch = errors.New("tensor dimension mismatch")
	ErrTrialOutOfRange   = errors.New("trial index out of range")
)

// NewShapeError builds an ErrInvalidShape with the offending extents attached.
func NewShapeError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidShape, fmt.Sprintf(format, args...))
}
