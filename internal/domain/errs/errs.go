// Package errs defines the error taxonomy shared by the checkout core.
//
// Every failure crossing a service boundary is one of five kinds: validation
// (caller input is malformed), invariant violation (independently derivable
// values disagree), not found, concurrency conflict, or persistence failure.
// Errors carry structured detail so callers can render a specific message
// without parsing error strings.
package errs

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for failures that carry no per-field detail.
var (
	// ErrConcurrencyConflict indicates a concurrent mutation was detected on
	// the same aggregate. The caller may retry.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
)

// ValidationError indicates a caller-supplied value is out of range or has
// the wrong shape. The caller can fix the input and retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Validation constructs a ValidationError for the given field.
func Validation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvariantViolation indicates two independently derivable values disagree,
// e.g. a stored line total that does not equal quantity times unit price.
// This is a client/server desync rather than a user input error.
type InvariantViolation struct {
	Field    string
	Expected string
	Actual   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated on %s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// Invariant constructs an InvariantViolation with expected/actual detail.
func Invariant(field, expected, actual string) *InvariantViolation {
	return &InvariantViolation{Field: field, Expected: expected, Actual: actual}
}

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NotFound constructs a NotFoundError for the given entity kind and ID.
func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// PersistenceError wraps a storage or transport failure. The caller may retry
// with backoff; the operation is not guaranteed idempotent.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err as a PersistenceError for the named operation.
func Persistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvariant reports whether err is (or wraps) an InvariantViolation.
func IsInvariant(err error) bool {
	var iv *InvariantViolation
	return errors.As(err, &iv)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
