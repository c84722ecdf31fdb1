// Package common defines sentinel errors shared by the server layers.
// Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// ErrConflict is returned when a mutation hits a submitted timesheet,
	// a timesheet is submitted twice, or a unique key is already taken.
	ErrConflict = errors.New("conflict")

	// ErrValidation marks malformed or constraint-violating input.
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrTimesheetSubmitted is the conflict reported by the submission guard.
	ErrTimesheetSubmitted = fmt.Errorf("%w: timesheet already submitted", ErrConflict)
)

// FieldError is a validation failure tied to a single input field.
type FieldError struct {
	Field   string
	Message string
}

// NewFieldError builds a FieldError for field.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap lets errors.Is(err, ErrValidation) match any FieldError.
func (e *FieldError) Unwrap() error {
	return ErrValidation
}
