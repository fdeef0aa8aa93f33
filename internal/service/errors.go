package service

import (
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/eventmaster/internal/client"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrSoldOut is returned when an attendee selects a sold-out event.
	ErrSoldOut = errors.New("event is sold out")

	// ErrTicketSoldOut is returned when a sold-out ticket type is chosen.
	ErrTicketSoldOut = errors.New("ticket type is sold out")

	// ErrLastTicketType is returned when removing the only ticket type row.
	ErrLastTicketType = errors.New("an event needs at least one ticket type")

	// ErrNotEditing is returned by Save when no draft is open.
	ErrNotEditing = errors.New("no event is being edited")

	// ErrRejected is returned when the backend answered 2xx without
	// acknowledging the mutation.
	ErrRejected = errors.New("request rejected")

	// ErrSignedOut is returned when the credential was missing, expired or
	// refused. The caller should show its signed-out view.
	ErrSignedOut = errors.New("signed out")
)

// SignedOutMessage is the blocking notice shown when the session ends.
const SignedOutMessage = "Your session has ended. Please sign in again."

// ValidationError is a local guard failure. No network call was issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// isAuthFailure reports whether err means the caller is no longer signed in.
// A 403 is not one: the credential is good, the action is not allowed.
func isAuthFailure(err error) bool {
	return errors.Is(err, client.ErrUnauthorized) ||
		errors.Is(err, session.ErrExpired) ||
		errors.Is(err, session.ErrRefreshFailed)
}

// signedOut invalidates sess and tags err with ErrSignedOut.
func signedOut(sess *session.Session, err error) error {
	sess.Invalidate()
	return fmt.Errorf("%w: %w", ErrSignedOut, err)
}
