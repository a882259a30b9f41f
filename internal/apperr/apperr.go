// Package apperr defines the error taxonomy shared by the gateway and the
// services built on top of it.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain error kinds. Service boundaries wrap one of these in an *Error.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrAlreadyApplied      = errors.New("already applied")
	ErrUserNotFound        = errors.New("user not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid application status")

	// Generic operation failures (transport, remote or decoding trouble).
	ErrLoginFailed    = errors.New("login failed")
	ErrRegisterFailed = errors.New("registration failed")
	ErrApplyFailed    = errors.New("apply failed")
	ErrFetchFailed    = errors.New("fetch failed")
	ErrCheckFailed    = errors.New("check failed")
	ErrUpdateFailed   = errors.New("update failed")
	ErrCreateFailed   = errors.New("create failed")
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: transport: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx answer from a reachable server.
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: remote returned status %d", e.Op, e.StatusCode)
}

// Is lets callers match a 404 with errors.Is(err, ErrNotFound).
func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Error is what crosses a service boundary: a fixed user-facing message plus
// the kind it belongs to. The cause is kept for logging only and is not part
// of Error().
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the kind, so errors.Is(err, ErrAlreadyApplied) works.
func (e *Error) Unwrap() error { return e.Kind }

// New builds a service error.
func New(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Message returns the user-facing text of err. Errors that did not pass
// through a service boundary yield fallback instead of their raw text.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// IsTransport reports whether err came from a failed network round trip.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
