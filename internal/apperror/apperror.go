package apperror

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
	ErrNotConfirmed = errors.New("not confirmed")
)

type AppError struct {
	Err     error             // actual error
	Message string            // Human-readable error message
	Field   string            // Optional: field causing the error
	Fields  map[string]string // Optional: every invalid field with its message
	Status  int               // Optional: HTTP status reported by the API
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  map[string]string{field: message},
	}
}

// Invalid reports several field failures at once. Field is set to the
// alphabetically first field so single-field callers still get a stable value.
func Invalid(fields map[string]string) *AppError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	e := &AppError{
		Err:     ErrValidation,
		Message: "please correct the highlighted fields",
		Fields:  fields,
	}
	if len(names) > 0 {
		e.Field = names[0]
		e.Message = fields[names[0]]
	}
	return e
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when the API rejected the bearer token.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
		Status:  401,
	}
}

// Upstream wraps a failure reported by (or while reaching) the remote API.
// status is 0 when the request never got a response.
func Upstream(status int, message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
		Status:  status,
	}
}

// NotConfirmed blocks a destructive action the user has not confirmed.
func NotConfirmed(action string) *AppError {
	return &AppError{
		Err:     ErrNotConfirmed,
		Message: fmt.Sprintf("%s must be confirmed", action),
	}
}

// Message returns the human-readable message carried by err, or fallback
// when err carries none.
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// FieldErrors returns the per-field messages carried by a validation error.
func FieldErrors(err error) map[string]string {
	var appErr *AppError
	if !errors.As(err, &appErr) || !errors.Is(err, ErrValidation) {
		return nil
	}
	if len(appErr.Fields) > 0 {
		return appErr.Fields
	}
	if appErr.Field != "" {
		return map[string]string{appErr.Field: appErr.Message}
	}
	return nil
}
