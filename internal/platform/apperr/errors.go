// Package apperr defines the error taxonomy shared by every feature and the
// mapping from those errors to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Feature errors wrap one of these so that handlers can map them
// to a status code with errors.Is.
var (
	// ErrNotFound indicates an unknown or soft-deleted resource.
	ErrNotFound = errors.New("not found")

	// ErrAuthenticationFailed indicates credentials that were presented but could not be resolved.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotAuthenticated indicates that the endpoint needs an identity and none was presented.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied indicates an identity that may not perform the action.
	ErrPermissionDenied = errors.New("permission denied")
)

// NonFieldErrors is the key used for errors that do not belong to one field.
const NonFieldErrors = "non_field_errors"

// ValidationError carries per-field messages for malformed, missing or duplicate input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Validation returns a ValidationError with a single message.
func Validation(field, msg string) *ValidationError {
	return NewValidationError().Add(field, msg)
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// HasErrors reports whether any message was added.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns e as an error, or nil when it holds no messages.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// detailedError attaches a client-facing message to an error kind.
type detailedError struct {
	kind   error
	detail string
}

func (e *detailedError) Error() string  { return e.detail }
func (e *detailedError) Unwrap() error  { return e.kind }
func (e *detailedError) Detail() string { return e.detail }

// WithDetail returns an error of the given kind whose response body uses detail.
func WithDetail(kind error, detail string) error {
	return &detailedError{kind: kind, detail: detail}
}
