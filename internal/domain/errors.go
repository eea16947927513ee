package domain

import (
	"errors"
	"fmt"
)

// Store-level sentinels. Adapters translate their engine's failures into
// these so the application layer never sees driver types.
var (
	// ErrNotFound means no translation matched the lookup.
	ErrNotFound = errors.New("translation not found")
	// ErrDuplicateKey means an insert collided with the natural-key
	// uniqueness constraint. Recovered internally by the upsert path.
	ErrDuplicateKey = errors.New("duplicate translation key")
	// ErrEntityTypeUnknown means the entity type is not registered.
	ErrEntityTypeUnknown = errors.New("entity type not registered")
)

// ValidationError reports malformed input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the named input field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// EntityNotFoundError means the owning entity referenced by an operation
// does not exist in its source domain.
type EntityNotFoundError struct {
	EntityType string
	EntityID   int64
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.EntityType, e.EntityID)
}

// IsEntityNotFound reports whether err is an EntityNotFoundError.
func IsEntityNotFound(err error) bool {
	var nf *EntityNotFoundError
	return errors.As(err, &nf)
}

// StoreError wraps an underlying persistence or transaction failure. Fatal
// for the enclosing operation; the caller may retry the whole operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Storef wraps err as a StoreError for operation op.
func Storef(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// IsStore reports whether err is a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// BatchItemError records the failure of one request inside a bulk upsert.
// It does not abort the batch.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("request %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }
