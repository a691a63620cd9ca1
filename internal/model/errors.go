package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("task not found")
	ErrParentNotFound = errors.New("parent task not found")
	ErrAmbiguous      = errors.New("ambiguous task id")
	ErrNoneAvailable  = errors.New("no incomplete tasks available")
)

type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// NotFoundError reports an identifier prefix that matched no task.
// Parent marks a failed parent lookup during create or update.
type NotFoundError struct {
	Prefix string
	Parent bool
}

func (e *NotFoundError) Error() string {
	if e.Parent {
		return fmt.Sprintf("no parent task with ID %q", e.Prefix)
	}
	return fmt.Sprintf("no task with ID %q", e.Prefix)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound || (e.Parent && target == ErrParentNotFound)
}

type AmbiguousError struct {
	Prefix     string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	// Show enough characters to tell the candidates apart.
	n := max(ShortIDLength, len(e.Prefix)+3)
	short := make([]string, 0, len(e.Candidates))
	for _, id := range e.Candidates {
		short = append(short, id[:min(n, len(id))])
	}
	return fmt.Sprintf("task ID %q is ambiguous, matches: %s", e.Prefix, strings.Join(short, ", "))
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }
