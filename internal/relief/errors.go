package relief

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced record does not exist and the
	// operation cannot degrade to a no-op.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrUnknownReference is returned when a foreign key names a missing record.
	ErrUnknownReference = errors.New("unknown reference")

	// ErrHasDependents is returned when a delete is restricted by dependent records.
	ErrHasDependents = errors.New("record has dependents")

	// ErrValidation is returned when a field set is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrNotPersisted marks a write that was applied in memory but could not
	// reach durable storage. Callers should treat it as a warning.
	ErrNotPersisted = errors.New("change not persisted")

	// ErrUnavailable is returned when a collection cannot be read from the
	// backend. Writes that depend on the current collection are refused.
	ErrUnavailable = errors.New("store unavailable")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError describes a uniqueness violation.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already in use", e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// IntegrityError describes a foreign key that does not resolve.
type IntegrityError struct {
	Field string
	Ref   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s references unknown record %q", e.Field, e.Ref)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrUnknownReference }

// DependentsError lists the records that block a restricted delete.
type DependentsError struct {
	Kind   string
	ID     string
	Counts map[string]int // collection -> number of dependent records
}

func (e *DependentsError) Error() string {
	kinds := make([]string, 0, len(e.Counts))
	for k := range e.Counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", e.Counts[k], k))
	}
	return fmt.Sprintf("%s %s is still referenced by %s", e.Kind, e.ID, strings.Join(parts, ", "))
}

func (e *DependentsError) Is(target error) bool { return target == ErrHasDependents }

// PersistenceError reports a durable write that failed. The in-memory view
// already holds the new value.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrNotPersisted }

// ReadError reports a collection the backend failed to return.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrUnavailable }

// IsWarning reports whether err only carries persistence warnings, meaning
// the operation took effect in memory.
func IsWarning(err error) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !IsWarning(e) {
				return false
			}
		}
		return true
	}
	var pe *PersistenceError
	return errors.As(err, &pe)
}
