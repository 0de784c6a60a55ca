package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrInstructorOnly is returned when a non-instructor touches an elevated product
	ErrInstructorOnly = errors.New("product is available to approved instructors only")
)

// ValidationError is bad input rejected before any external call. Message is shown verbatim.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// AuthError is a failed session exchange or a missing identity where one is required.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Err)
	}
	return "auth: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamError is a failure of the payment, email, identity or content provider.
type UpstreamError struct {
	Service string
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConsistencyError reports a multi-step operation that stopped halfway.
type ConsistencyError struct {
	Message string
	Err     error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: %s: %v", e.Message, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

func newValidationError(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

func newUpstreamError(service, message string, err error) error {
	return &UpstreamError{Service: service, Message: message, Err: err}
}
