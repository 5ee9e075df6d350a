package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusConflict means a conditional status update matched nothing;
	// the reservation exists in a status outside the expected predecessors,
	// or it does not exist at all.
	ErrStatusConflict = errors.New("booking status changed concurrently")
)
