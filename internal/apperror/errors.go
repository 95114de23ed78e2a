// Package apperror defines the failure taxonomy shared by the core components
// and the services built on them.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when an operation targets an identifier absent from
// the snapshot it was given.
var ErrNotFound = errors.New("not found")

// NotFound wraps ErrNotFound with the kind and identifier that were missing.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// fieldErrors is the shared storage for field level failures.
type fieldErrors map[string]string

func (f fieldErrors) describe(prefix string) string {
	if len(f) == 0 {
		return prefix
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

// InvalidInputError reports missing or unparseable request fields. It is
// raised before any state is touched.
type InvalidInputError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e == nil {
		return ""
	}
	return fieldErrors(e.FieldErrors).describe("invalid input")
}

// HasErrors reports whether any field level issues were recorded.
func (e *InvalidInputError) HasErrors() bool {
	return e != nil && len(e.FieldErrors) > 0
}

// Add records a field level issue.
func (e *InvalidInputError) Add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	e.FieldErrors[field] = message
}

// ValidationError reports well formed input that breaks a business rule, such
// as a non-positive headcount.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return fieldErrors(v.FieldErrors).describe("validation failed")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field level issue.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// Merge copies entries from another validation error into the receiver.
func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.Add(field, msg)
	}
}

// ExternalServiceError wraps a failure of an external collaborator. The cause
// is kept unmodified so callers can inspect it and decide whether to retry.
type ExternalServiceError struct {
	Service string
	Err     error
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Service + ": external service failure"
	}
	return e.Service + ": " + e.Err.Error()
}

// Unwrap exposes the collaborator failure.
func (e *ExternalServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConflictError reports that a session would overlap another booking of the
// same room on the same day.
type ConflictError struct {
	SessionIDs []string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return ""
	}
	return "session overlaps " + strings.Join(e.SessionIDs, ", ")
}

// Kind maps an error to a stable label for logs and metrics.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var (
		inputErr    *InvalidInputError
		validErr    *ValidationError
		externalErr *ExternalServiceError
		conflictErr *ConflictError
	)
	switch {
	case errors.As(err, &inputErr):
		return "invalid_input"
	case errors.As(err, &validErr):
		return "validation"
	case errors.As(err, &externalErr):
		return "external_service"
	case errors.As(err, &conflictErr):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "unexpected"
}
