// Package repository is the in-memory store behind the local API stub.
// Events and registrations live in a single Store so that a booking can
// check and update both under one lock.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/eventmaster/internal/inventory"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when an organizer touches another organizer's event.
var ErrForbidden = errors.New("event belongs to another organizer")

// ErrTicketTypeNotFound is returned when a booking names an unknown ticket type.
var ErrTicketTypeNotFound = errors.New("ticket type not found")

// ErrEventFull is returned when a ticket type has no remaining capacity.
var ErrEventFull = errors.New("ticket type is fully booked")

// ErrAlreadyRegistered is returned when the same email registers twice.
var ErrAlreadyRegistered = errors.New("email already registered for this event")

// ErrAlreadyCheckedIn is returned when a ticket is validated a second time.
var ErrAlreadyCheckedIn = errors.New("ticket already used")

// ErrInvalid wraps payload problems.
var ErrInvalid = errors.New("invalid event")

// Registration statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCheckedIn = "checked-in"
)

type registration struct {
	model.Registration
	userID string
}

// Store holds every event and registration.
type Store struct {
	mu     sync.Mutex
	events []*model.Event
	regs   []*registration
	now    func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

func (s *Store) event(id string) (*model.Event, error) {
	for _, e := range s.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) owned(organizerID, id string) (*model.Event, error) {
	e, err := s.event(id)
	if err != nil {
		return nil, err
	}
	if e.OrganizerID != organizerID {
		return nil, ErrForbidden
	}
	return e, nil
}

func cloneEvent(e *model.Event) model.Event {
	out := *e
	out.TicketTypes = slices.Clone(e.TicketTypes)
	return out
}

// EventRepository handles events.
type EventRepository struct {
	store *Store
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

// Create stores a new event for organizerID and returns it with a
// generated UUID. A missing status defaults to draft.
func (r *EventRepository) Create(ctx context.Context, organizerID string, payload model.EventPayload) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tickets, err := ticketTypes(payload.TicketTypes, nil)
	if err != nil {
		return nil, err
	}
	event := &model.Event{
		ID:          uuid.NewString(),
		OrganizerID: organizerID,
		Name:        payload.Name,
		Date:        payload.Date,
		Time:        payload.Time,
		Location:    payload.Location,
		Description: payload.Description,
		Status:      payload.Status,
		TicketTypes: tickets,
	}
	if event.Status == "" {
		event.Status = model.StatusDraft
	}
	if err := checkEvent(event); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events = append(r.store.events, event)
	out := cloneEvent(event)
	return &out, nil
}

// ListByOrganizer returns the events owned by organizerID, newest first.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	return r.filter(ctx, func(e *model.Event) bool { return e.OrganizerID == organizerID })
}

// ListPublished returns the events attendees may see, newest first.
func (r *EventRepository) ListPublished(ctx context.Context) ([]model.Event, error) {
	return r.filter(ctx, func(e *model.Event) bool { return e.Status == model.StatusPublished })
}

func (r *EventRepository) filter(ctx context.Context, keep func(*model.Event) bool) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var events []model.Event
	for i := len(r.store.events) - 1; i >= 0; i-- {
		if e := r.store.events[i]; keep(e) {
			events = append(events, cloneEvent(e))
		}
	}
	return events, nil
}

// Update replaces an event's fields and ticket types. Sold counts of
// existing ticket types are kept from the store, not taken from the payload.
func (r *EventRepository) Update(ctx context.Context, organizerID, id string, payload model.EventPayload) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, err := r.store.owned(organizerID, id)
	if err != nil {
		return nil, err
	}
	tickets, err := ticketTypes(payload.TicketTypes, e.TicketTypes)
	if err != nil {
		return nil, err
	}
	next := cloneEvent(e)
	next.Name = payload.Name
	next.Date = payload.Date
	next.Time = payload.Time
	next.Location = payload.Location
	next.Description = payload.Description
	next.TicketTypes = tickets
	if payload.Status != "" {
		next.Status = payload.Status
	}
	if err := checkEvent(&next); err != nil {
		return nil, err
	}
	*e = next
	out := cloneEvent(e)
	return &out, nil
}

// UpdateStatus changes only the publication state.
func (r *EventRepository) UpdateStatus(ctx context.Context, organizerID, id string, status model.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if status != model.StatusDraft && status != model.StatusPublished {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, err := r.store.owned(organizerID, id)
	if err != nil {
		return err
	}
	e.Status = status
	return nil
}

// Delete removes an event. Its registrations are kept.
func (r *EventRepository) Delete(ctx context.Context, organizerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, err := r.store.owned(organizerID, id); err != nil {
		return err
	}
	r.store.events = slices.DeleteFunc(r.store.events, func(e *model.Event) bool { return e.ID == id })
	return nil
}

func ticketTypes(payload []model.TicketTypePayload, existing []model.TicketType) ([]model.TicketType, error) {
	tickets := make([]model.TicketType, 0, len(payload))
	for _, p := range payload {
		price, err := inventory.ParsePrice(p.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		tt := model.TicketType{
			ID:       p.ID,
			Name:     p.Name,
			Price:    price,
			Capacity: p.Capacity,
		}
		if tt.ID == "" {
			tt.ID = "tkt-" + uuid.NewString()
		}
		if i := slices.IndexFunc(existing, func(e model.TicketType) bool { return e.ID == tt.ID }); i >= 0 {
			tt.Sold = existing[i].Sold
		} else {
			tt.Sold = p.Sold
		}
		tickets = append(tickets, tt)
	}
	return tickets, nil
}

func checkEvent(e *model.Event) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(e.TicketTypes) == 0 {
		return fmt.Errorf("%w: at least one ticket type is required", ErrInvalid)
	}
	if e.Status != model.StatusDraft && e.Status != model.StatusPublished {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, e.Status)
	}
	for _, tt := range e.TicketTypes {
		if tt.Capacity < 0 || tt.Sold < 0 {
			return fmt.Errorf("%w: %s has a negative count", ErrInvalid, tt.Name)
		}
		if tt.Sold > tt.Capacity {
			return fmt.Errorf("%w: %s has more sold (%d) than capacity (%d)", ErrInvalid, tt.Name, tt.Sold, tt.Capacity)
		}
	}
	return nil
}

// RegistrationRepository handles registrations.
type RegistrationRepository struct {
	store *Store
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(store *Store) *RegistrationRepository {
	return &RegistrationRepository{store: store}
}

// Book claims one unit of a ticket type for userID.
//
// The capacity check and the sold increment happen under the store lock,
// so two concurrent bookings for the last unit cannot both see it free:
// exactly one succeeds and the other gets ErrEventFull.
func (r *RegistrationRepository) Book(ctx context.Context, userID string, req model.RegisterRequest) (*model.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, err := r.store.event(req.EventID)
	if err != nil || e.Status != model.StatusPublished {
		return nil, ErrNotFound
	}
	i := slices.IndexFunc(e.TicketTypes, func(tt model.TicketType) bool { return tt.ID == req.TicketTypeID })
	if i < 0 {
		return nil, ErrTicketTypeNotFound
	}
	for _, reg := range r.store.regs {
		if reg.EventID == req.EventID && strings.EqualFold(reg.AttendeeEmail, req.AttendeeEmail) {
			return nil, ErrAlreadyRegistered
		}
	}
	tt := &e.TicketTypes[i]
	if tt.Sold >= tt.Capacity {
		return nil, ErrEventFull
	}
	tt.Sold++

	reg := &registration{
		Registration: model.Registration{
			RegistrationID:   uuid.NewString(),
			EventID:          e.ID,
			EventName:        e.Name,
			TicketTypeID:     tt.ID,
			TicketTypeName:   tt.Name,
			AttendeeName:     req.AttendeeName,
			AttendeeEmail:    req.AttendeeEmail,
			RegistrationDate: r.store.now().UTC().Format(time.RFC3339),
			Status:           StatusConfirmed,
		},
		userID: userID,
	}
	r.store.regs = append(r.store.regs, reg)
	out := reg.Registration
	return &out, nil
}

// SetTicketURL records where the ticket artifact for a registration lives.
func (r *RegistrationRepository) SetTicketURL(ctx context.Context, id, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, reg := range r.store.regs {
		if reg.RegistrationID == id {
			reg.TicketURL = url
			return nil
		}
	}
	return ErrNotFound
}

// ListByUser returns the registrations made by userID, oldest first.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	return r.filter(ctx, func(reg *registration) bool { return reg.userID == userID })
}

// ListByEvent returns the registrations of one of organizerID's events.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, organizerID, eventID string) ([]model.Registration, error) {
	r.store.mu.Lock()
	_, err := r.store.owned(organizerID, eventID)
	r.store.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.filter(ctx, func(reg *registration) bool { return reg.EventID == eventID })
}

func (r *RegistrationRepository) filter(ctx context.Context, keep func(*registration) bool) ([]model.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var regs []model.Registration
	for _, reg := range r.store.regs {
		if keep(reg) {
			regs = append(regs, reg.Registration)
		}
	}
	return regs, nil
}

// CheckIn validates a ticket for one of organizerID's events and marks it
// used. The registration is returned even when it was already used.
func (r *RegistrationRepository) CheckIn(ctx context.Context, organizerID, id string) (*model.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := slices.IndexFunc(r.store.regs, func(reg *registration) bool { return reg.RegistrationID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	reg := r.store.regs[i]
	if _, err := r.store.owned(organizerID, reg.EventID); err != nil {
		return nil, err
	}
	out := reg.Registration
	if reg.Status == StatusCheckedIn {
		return &out, ErrAlreadyCheckedIn
	}
	reg.Status = StatusCheckedIn
	out.Status = StatusCheckedIn
	return &out, nil
}
