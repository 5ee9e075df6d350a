package errors

import "errors"

var (
	ErrNotFound = errors.New("concern not found")

	ErrInvalidID = errors.New("invalid concern ID format")

	// ErrStatusConflict means a guarded status update matched nothing.
	ErrStatusConflict = errors.New("concern status changed concurrently")
)
