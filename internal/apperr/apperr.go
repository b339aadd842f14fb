package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError carries every field-level failure detected for one
// operation. Fields maps field name to a human-readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validation builds a single-field validation error.
func Validation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// FieldErrors accumulates field failures and converts to a single
// ValidationError once all checks have run.
type FieldErrors map[string]string

// Add records a failure for field unless one is already recorded.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns a ValidationError covering every recorded failure, or nil
// when no check failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// NotFoundError reports an id that resolved to no record.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

// NotFound builds a NotFoundError for the named entity.
func NotFound(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict builds a ConflictError with the given message.
func Conflict(msg string) *ConflictError {
	return &ConflictError{Msg: msg}
}

// MalformedIDError reports an identifier the store cannot parse.
type MalformedIDError struct {
	Raw string
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("malformed id: %q", e.Raw)
}

// MalformedID builds a MalformedIDError for the raw input.
func MalformedID(raw string) *MalformedIDError {
	return &MalformedIDError{Raw: raw}
}

// HTTPStatus maps a service error to the response status the API layer
// should emit. Anything outside the taxonomy is an internal failure.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		me *MalformedIDError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &me):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
