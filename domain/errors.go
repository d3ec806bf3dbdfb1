package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("not found")
	// ErrRelatedRecordMissing indicates a foreign key pointing at a row that
	// does not exist.
	ErrRelatedRecordMissing = errors.New("related record not found")
	// ErrConflict indicates a uniqueness violation in the store.
	ErrConflict = errors.New("a record with this value already exists")
)

// Resource names used in not-found messages.
const (
	ResourceBoard   = "Board"
	ResourceStatus  = "Status"
	ResourceTask    = "Task"
	ResourceSubTask = "Subtask"
)

// NotFoundError reports a missing entity, or one that exists outside the
// parent it was requested under.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(resource string) error { return &NotFoundError{Resource: resource} }

// ValidationError carries field level violations of an input contract.
type ValidationError struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 && len(e.FormErrors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %d form error(s), %d field(s) invalid", len(e.FormErrors), len(e.FieldErrors))
}

// Add records a violation for field. An empty field is a form level error.
func (e *ValidationError) Add(field, msg string) {
	if field == "" {
		e.FormErrors = append(e.FormErrors, msg)
		return
	}
	if e.FieldErrors == nil {
		e.FieldErrors = map[string][]string{}
	}
	e.FieldErrors[field] = append(e.FieldErrors[field], msg)
}

// Empty reports whether no violation was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.FormErrors) == 0 && len(e.FieldErrors) == 0
}

// Err returns e when it holds violations and nil otherwise.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	if e.FormErrors == nil {
		e.FormErrors = []string{}
	}
	if e.FieldErrors == nil {
		e.FieldErrors = map[string][]string{}
	}
	return e
}

// StoreError wraps a persistence failure that has no more specific class.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }
