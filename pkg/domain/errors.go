package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTemplateNotFound is returned when a template ID cannot be found in the store.
var ErrTemplateNotFound = errors.New("template not found")

// ErrOutputNotFound is returned when a data output ID cannot be found in the store.
var ErrOutputNotFound = errors.New("data output not found")

// ErrPluginNotFound is returned when no plugin is registered under a key.
var ErrPluginNotFound = errors.New("plugin not found")

// ErrSnippetNotFound is returned when a snippet cannot be found.
var ErrSnippetNotFound = errors.New("snippet not found")

// ErrReadOnly is returned by stores that do not accept writes.
var ErrReadOnly = errors.New("store is read-only")

// ErrInvalidModelType is returned for an unknown model type tag.
var ErrInvalidModelType = errors.New("invalid model type")

// ErrNoItems is returned when none of the requested items exist.
var ErrNoItems = errors.New("No valid items provided to template")

// ErrTemplateMissing is returned when a template body (or a snippet it includes)
// cannot be resolved.
var ErrTemplateMissing = errors.New("template is missing")

// TemplateMissingError names the file that could not be resolved.
type TemplateMissingError struct {
	Name string
}

func (e *TemplateMissingError) Error() string {
	return fmt.Sprintf("Template file '%s' is missing or does not exist", e.Name)
}

func (e *TemplateMissingError) Unwrap() error { return ErrTemplateMissing }

// ValidationError collects per-field messages. The zero value is not usable;
// create one with NewValidationError.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError is shorthand for a ValidationError holding a single message.
func FieldError(field, msg string) *ValidationError {
	v := NewValidationError()
	v.Add(field, msg)
	return v
}

// Add appends a message for field.
func (v *ValidationError) Add(field, msg string) {
	v.Fields[field] = append(v.Fields[field], msg)
}

// HasErrors reports whether any message was recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// OrNil returns v when it holds messages, nil otherwise.
func (v *ValidationError) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidation reports whether err carries field messages and returns them.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
