package domain

import (
	"errors"
	"fmt"
)

// ErrVersionConflict is returned by stores when a guarded write lost against a
// concurrent writer (the row's version moved underneath it). Engines translate
// it into an InvalidStateError for the caller.
var ErrVersionConflict = errors.New("concurrent modification detected")

// ValidationError means the caller sent malformed input. Retrying the same
// request will never succeed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError means the operation is not legal from the entity's current
// status, usually because the caller is acting on a stale view.
type InvalidStateError struct {
	Op      string
	Current string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: current status is %q", e.Op, e.Current)
}

func NewInvalidStateError(op string, current string) *InvalidStateError {
	return &InvalidStateError{Op: op, Current: current}
}

// ConflictError means a business rule blocks the request as expressed; the
// caller has to change intent, not just retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError means the referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
