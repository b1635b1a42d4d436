package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates user input failed a precondition.
	// Nothing was sent to a backend.
	ErrValidation = errors.New("validation failed")

	// ErrRemote indicates a backend call failed.
	ErrRemote = errors.New("remote call failed")

	// ErrSessionMismatch indicates an operation was invoked without an
	// authenticated session.
	ErrSessionMismatch = errors.New("not authenticated")

	// ErrInvalidCredentials is returned by account backends on a bad
	// email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountExists is returned by SignUp when the email is taken.
	ErrAccountExists = errors.New("account already exists")

	// ErrNotFound is returned when a task or account does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " required"
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Required returns a ValidationError for field.
func Required(field string) error {
	return &ValidationError{Field: field}
}

// RemoteError wraps a backend failure with the operation that caused it.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Is reports ErrRemote so callers can test with errors.Is.
func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote wraps err as a RemoteError for op. Returns nil if err is nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

// Message returns the human-readable cause of err, without the operation
// prefix added by RemoteError.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Err.Error()
	}
	return err.Error()
}
