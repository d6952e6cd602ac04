package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError carries field-keyed messages for a rejected form payload.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + v.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidInput).
func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Add records a message for field, keeping the first one reported.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	if _, ok := v.Fields[field]; !ok {
		v.Fields[field] = msg
	}
}

// HasErrors reports whether any field was rejected.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}
