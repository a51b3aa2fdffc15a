// Package validator checks documents before they enter an index build. It
// enforces ID and body size constraints and returns per-field error details.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/errors"
)

const (
	maxIDLength = 1024
	// DefaultMaxBodyBytes applies when the caller passes a non-positive limit.
	DefaultMaxBodyBytes = 16 << 20
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateDocument checks that the document has a usable ID and that its
// raw content fits within maxBodyBytes. Empty content is allowed.
func ValidateDocument(doc *ingestion.Document, maxBodyBytes int64) error {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	errs := make(map[string]string)

	id := strings.TrimSpace(doc.ID)
	if id == "" {
		errs["id"] = "id is required"
	} else if len(doc.ID) > maxIDLength {
		errs["id"] = fmt.Sprintf("id must be at most %d bytes", maxIDLength)
	}
	if int64(len(doc.Raw)) > maxBodyBytes {
		errs["body"] = fmt.Sprintf("body must be at most %d bytes", maxBodyBytes)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
