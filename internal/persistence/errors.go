package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint,
	// such as two sessions sharing an identifier.
	ErrConflict = errors.New("persistence: conflict")
)
