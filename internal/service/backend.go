// Package service implements the client-side workflows: the event catalog
// view state, the attendee registration flow and the organizer editor.
//
// Mutations never trust their own response for resulting state. After
// every successful mutation the workflow re-issues the affected list query
// through the Catalog and replaces its copy wholesale.
package service

import (
	"context"

	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

// EventLister fetches the caller's event list.
type EventLister interface {
	ListEvents(ctx context.Context, sess *session.Session) ([]model.RawEvent, error)
}

// RegistrationLister fetches the caller's registrations.
type RegistrationLister interface {
	MyRegistrations(ctx context.Context, sess *session.Session) ([]model.Registration, error)
}

// Registrar submits a registration.
type Registrar interface {
	Register(ctx context.Context, sess *session.Session, req model.RegisterRequest) (model.RegisterResult, error)
}

// EventManager is the organizer side of the API.
type EventManager interface {
	CreateEvent(ctx context.Context, sess *session.Session, payload model.EventPayload) (model.MutationResult, error)
	UpdateEvent(ctx context.Context, sess *session.Session, id string, payload model.EventPayload) (model.MutationResult, error)
	UpdateEventStatus(ctx context.Context, sess *session.Session, id string, status model.Status) (model.MutationResult, error)
	DeleteEvent(ctx context.Context, sess *session.Session, id string) (model.MutationResult, error)
	EventRegistrations(ctx context.Context, sess *session.Session, eventID string) ([]model.Registration, error)
	ValidateTicket(ctx context.Context, sess *session.Session, ticketID string) (model.ValidateTicketResult, error)
}

// Backend is the full API surface; *client.Client implements it.
type Backend interface {
	EventLister
	RegistrationLister
	Registrar
	EventManager
}
