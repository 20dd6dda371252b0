package api

import (
	"errors"
	"fmt"
)

// ValidationError is a 4xx response carrying a field-level message. The
// form stays editable; callers surface Message to the user.
type ValidationError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request rejected with status %d", e.Status)
}

// AuthError is a 401/403 response. Callers must redirect to the
// unauthenticated entry point, never retry.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("not authorized (status %d)", e.Status)
}

// NotFoundError is a 404 response, treated as an empty state.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Path
}

// TransportError covers network failures, timeouts and unusable server
// responses. No automatic retry; the user re-triggers the action.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
