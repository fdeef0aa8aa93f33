// Package model defines the core domain types for the event ticketing client.
package model

import "encoding/json"

// Status is the publication state of an event.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Toggled returns the opposite publication state.
func (s Status) Toggled() Status {
	if s == StatusPublished {
		return StatusDraft
	}
	return StatusPublished
}

// Role is derived from the identity provider's group claims.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

// TicketType is a priced inventory category within an event.
type TicketType struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Capacity int     `json:"capacity"`
	Sold     int     `json:"sold"`
}

// Event is an organizer-managed occasion with one or more ticket types.
type Event struct {
	ID          string       `json:"id"`
	OrganizerID string       `json:"organizerId,omitempty"`
	Name        string       `json:"name"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
	Location    string       `json:"location"`
	Description string       `json:"description"`
	Status      Status       `json:"status"`
	TicketTypes []TicketType `json:"ticketTypes"`
}

// RawTicketType is a ticket type as received from the backend. Numeric
// fields arrive as JSON numbers, numeric strings, or not at all.
type RawTicketType struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price,omitempty"`
	Capacity json.RawMessage `json:"capacity,omitempty"`
	Sold     json.RawMessage `json:"sold,omitempty"`
}

// RawEvent is an event as received from GET /events.
type RawEvent struct {
	ID          string          `json:"id"`
	OrganizerID string          `json:"organizerId,omitempty"`
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	TicketTypes []RawTicketType `json:"ticketTypes"`
}

// TicketTypePayload is the submission form of a ticket type: price as
// text, capacity and sold as integers.
type TicketTypePayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Capacity int    `json:"capacity"`
	Sold     int    `json:"sold"`
}

// EventPayload is the body of POST /events and PUT /events/{id}.
type EventPayload struct {
	Name        string              `json:"name"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Location    string              `json:"location"`
	Description string              `json:"description"`
	Status      Status              `json:"status,omitempty"`
	TicketTypes []TicketTypePayload `json:"ticketTypes"`
}

// StatusUpdate is the partial PUT /events/{id} body used by the status toggle.
type StatusUpdate struct {
	Status Status `json:"status"`
}

// MutationResult is returned by event create/update/delete. A present
// Message signals success.
type MutationResult struct {
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Registration is an attendee's claim on one unit of a ticket type.
type Registration struct {
	RegistrationID   string `json:"registrationId"`
	EventID          string `json:"eventId"`
	EventName        string `json:"eventName,omitempty"`
	TicketTypeID     string `json:"ticketTypeId"`
	TicketTypeName   string `json:"ticketTypeName,omitempty"`
	AttendeeName     string `json:"attendeeName"`
	AttendeeEmail    string `json:"attendeeEmail"`
	RegistrationDate string `json:"registrationDate"`
	Status           string `json:"status"`
	TicketURL        string `json:"ticketUrl,omitempty"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	EventID       string `json:"eventId"`
	TicketTypeID  string `json:"ticketTypeId"`
	AttendeeName  string `json:"attendeeName"`
	AttendeeEmail string `json:"attendeeEmail"`
}

// RegisterResult is the response of POST /register. A present Message
// signals success; TicketURL references the issued ticket artifact.
type RegisterResult struct {
	Message        string `json:"message,omitempty"`
	RegistrationID string `json:"registrationId,omitempty"`
	TicketURL      string `json:"ticketUrl,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ValidateTicketRequest is the body of POST /tickets/validate.
type ValidateTicketRequest struct {
	TicketID string `json:"ticketId"`
}

// ValidateTicketResult reports whether a ticket may be admitted.
type ValidateTicketResult struct {
	Valid        bool          `json:"valid"`
	Message      string        `json:"message,omitempty"`
	Registration *Registration `json:"registration,omitempty"`
}

// ErrorResponse is the JSON error envelope. Clients show Message verbatim.
type ErrorResponse struct {
	Message string `json:"message"`
}
