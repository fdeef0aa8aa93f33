package client

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericErrorMessage is shown when a failed response carries no message.
const GenericErrorMessage = "Something went wrong with the API call."

var (
	// ErrUnauthorized matches API errors with status 401: the credential
	// was missing or refused.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden matches API errors with status 403. The caller is
	// signed in but may not perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound matches API errors with status 404.
	ErrNotFound = errors.New("not found")

	// ErrTransport matches failures where no HTTP response was obtained.
	ErrTransport = errors.New("transport failure")
)

// APIError is a non-2xx response. Message is the body's message field
// verbatim, or GenericErrorMessage.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets callers match on the status class with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// TransportError wraps a failure to complete the HTTP exchange.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Message extracts the text to show a user for err: the API message
// verbatim, or the error text otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
