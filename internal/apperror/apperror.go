// Package apperror defines the domain error taxonomy shared by all layers.
//
// Services return these errors at the point of detection; the HTTP layer
// translates them to status codes in one place (handler.writeError). The
// sentinels are checked with errors.Is, the *AppError wrapper is extracted
// with errors.As for its human-readable message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInactive     = errors.New("inactive account")
)

type AppError struct {
	Err     error  // sentinel cause
	Message string // human-readable error message
	Field   string // optional: field causing the error
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
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
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

// Unauthorized returns an AppError for bad credentials or a missing, invalid,
// or expired token. HTTP handlers map this to 401 with a WWW-Authenticate hint.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Inactive returns an AppError for a disabled account. The credentials or
// token were otherwise valid; HTTP handlers map this to 403.
func Inactive(message string) *AppError {
	return &AppError{
		Err:     ErrInactive,
		Message: message,
	}
}
