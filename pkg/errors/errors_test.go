package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"wrapped duplicate", fmt.Errorf("adding d1: %w", ErrDuplicateDocument), http.StatusConflict},
		{"frozen", ErrIndexFrozen, http.StatusConflict},
		{"source", fmt.Errorf("listing: %w", ErrSourceUnavailable), http.StatusServiceUnavailable},
		{"not ready", ErrIndexNotReady, http.StatusServiceUnavailable},
		{"app error wins", New(ErrCacheUnavailable, http.StatusTeapot, "brewing"), http.StatusTeapot},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwraps(t *testing.T) {
	err := New(ErrInvalidInput, http.StatusBadRequest, "limit 0 out of range")
	if !Is(err, ErrInvalidInput) {
		t.Error("expected AppError to unwrap to its sentinel")
	}
	if got, want := err.Error(), "invalid input: limit 0 out of range"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var appErr *AppError
	if !As(fmt.Errorf("outer: %w", err), &appErr) || appErr.StatusCode != http.StatusBadRequest {
		t.Error("As did not find wrapped AppError")
	}
}
