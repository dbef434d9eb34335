package schema

import (
	"errors"
	"strings"
)

// ErrInvalidSchema is returned when a schema definition is malformed.
var ErrInvalidSchema = errors.New("invalid schema")

// FieldError describes one field that failed validation.
type FieldError struct {
	Path     string `json:"path"`
	Expected Kind   `json:"expected"`
	Reason   string `json:"reason"`
}

func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

// FieldErrors is the full set of problems found in one validation pass.
type FieldErrors []FieldError

func (errs FieldErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Paths returns the path of every error, in order.
func (errs FieldErrors) Paths() []string {
	paths := make([]string, len(errs))
	for i, e := range errs {
		paths[i] = e.Path
	}
	return paths
}
