package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers classify with errors.Is and show DomainError.Message to the caller.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
)

// DomainError is an expected failure with a message that is safe to return to clients.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

func invalid(msg string) error   { return &DomainError{Kind: ErrInvalidRequest, Message: msg} }
func conflict(msg string) error  { return &DomainError{Kind: ErrConflict, Message: msg} }
func notFound(msg string) error  { return &DomainError{Kind: ErrNotFound, Message: msg} }
func forbidden(msg string) error { return &DomainError{Kind: ErrForbidden, Message: msg} }
