package application

import (
	"errors"
	"fmt"

	"github.com/example/edutrack/internal/apperror"
	"github.com/example/edutrack/internal/persistence"
)

// Aliases so transport code can depend on the application package alone.
type (
	InvalidInputError    = apperror.InvalidInputError
	ValidationError      = apperror.ValidationError
	ExternalServiceError = apperror.ExternalServiceError
	ConflictError        = apperror.ConflictError
)

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = apperror.ErrNotFound

// ErrImportDisabled is returned when no extraction collaborator is configured.
var ErrImportDisabled = errors.New("application: timetable import is not configured")

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrImportDisabled):
		return "unavailable"
	case errors.Is(err, persistence.ErrNotFound):
		return "not_found"
	case errors.Is(err, persistence.ErrConflict):
		return "conflict"
	}
	return apperror.Kind(err)
}

// mapStoreError translates persistence sentinels into application errors.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, persistence.ErrConflict):
		invalid := &InvalidInputError{}
		invalid.Add("id", "duplicate identifier")
		return fmt.Errorf("%w: %v", invalid, err)
	}
	return err
}
