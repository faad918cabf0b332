package shared

import "errors"

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState indicates an operation illegal for the entity's current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict indicates a concurrent-mutation race; reload and retry once.
	ErrConflict = errors.New("conflict")
)
