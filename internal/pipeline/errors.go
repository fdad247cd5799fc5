package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the pipeline taxonomy. Callers match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidStage      = errors.New("invalid stage")
	ErrNoChange          = errors.New("no change")
	ErrValidation        = errors.New("validation error")
	ErrPersistence       = errors.New("persistence failure")
	ErrConflict          = errors.New("conflict")
	ErrTransitionPending = errors.New("transition already pending")
)

// ValidationError lists the offending fields of a malformed payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
