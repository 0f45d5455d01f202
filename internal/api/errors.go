package api

import (
	"errors"
	"fmt"
)

// The backend is never trusted to fail cleanly, so every request collapses
// into one of four error classes. Callers branch on the class, not on status
// codes: validation problems stay on the device, auth problems may trigger a
// logout, everything else is shown to the user with the server message when
// one exists.

// NetworkError means no usable response arrived: DNS failure, refused
// connection, or the 10 second timeout.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cannot reach server: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a response the server produced on purpose: a non-2xx status
// or an envelope with status=false. Message carries the server-provided text
// when available.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (HTTP %d)", e.Status)
}

// AuthError is a 401: the token is missing, invalid, or expired. Callers
// decide whether to log the session out.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "session expired, please log in again"
}

// ValidationError is a client-side form check that failed before any request
// was issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// UserMessage extracts the text to surface in the UI for any error coming out
// of this package, falling back to a generic connection message.
func UserMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Error()
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "cannot connect to server"
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
