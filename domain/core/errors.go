package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInsufficientData marks an algorithm that did not receive enough valid
	// points to produce a result. Callers render an empty state; never fatal.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// ErrSingularMatrix marks a regression system whose pivot collapsed during
	// elimination. Callers skip the affected lag/model and continue.
	ErrSingularMatrix = errors.New("singular matrix")

	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrSeriesNotFound    = fmt.Errorf("%w: series", ErrNotFound)
	ErrIndicatorNotFound = fmt.Errorf("%w: indicator", ErrNotFound)

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors with context
func NewNotFoundError(resource string, key string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, key)
}

func NewInsufficientDataError(op string, have, need int) error {
	return fmt.Errorf("%w: %s needs %d valid points, got %d", ErrInsufficientData, op, need, have)
}

// Error checking helpers
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsSingularMatrix(err error) bool {
	return errors.Is(err, ErrSingularMatrix)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
