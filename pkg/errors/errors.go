package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateDocument = errors.New("document already indexed")
	ErrIndexFrozen       = errors.New("index is frozen")
	ErrSourceUnavailable = errors.New("document source unavailable")
	ErrIndexNotReady     = errors.New("index not ready")
	ErrCacheUnavailable  = errors.New("cache unavailable")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Is and As re-export the standard helpers so callers need one import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateDocument), errors.Is(err, ErrIndexFrozen):
		return http.StatusConflict
	case errors.Is(err, ErrSourceUnavailable), errors.Is(err, ErrIndexNotReady),
		errors.Is(err, ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
