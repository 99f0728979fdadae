package domain

import (
	"errors"
	"fmt"
)

// ValidationError means an input failed a field constraint. Message is safe
// to show to end users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// PermissionError means the actor may not perform the action.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("not permitted to %s", e.Action)
}

func NewPermissionError(action string) *PermissionError {
	return &PermissionError{Action: action}
}

// ConflictError means the target is not in a state that allows the operation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a persistence failure. It is the only retryable kind.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsRetryable reports whether the caller may retry the same call unchanged.
func IsRetryable(err error) bool {
	var target *StoreError
	return errors.As(err, &target)
}
