package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/eventmaster/internal/inventory"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

// EditorState is a state of the organizer's event form.
type EditorState int

const (
	EditorIdle EditorState = iota
	EditorEditing
	EditorSaving
	EditorFailed
)

func (s EditorState) String() string {
	switch s {
	case EditorIdle:
		return "idle"
	case EditorEditing:
		return "editing"
	case EditorSaving:
		return "saving"
	case EditorFailed:
		return "failed"
	}
	return fmt.Sprintf("EditorState(%d)", int(s))
}

// Event form fields accepted by SetField.
const (
	FieldName        = "name"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldLocation    = "location"
	FieldDescription = "description"
)

// Ticket type fields accepted by SetTicketField.
const (
	TicketFieldName     = "name"
	TicketFieldPrice    = inventory.FieldPrice
	TicketFieldCapacity = inventory.FieldCapacity
	TicketFieldSold     = inventory.FieldSold
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	defaultTicketTypeName = "Standard"
)

// EventEditor is the organizer's create/edit form and the event-level
// commands around it. Every mutation is followed by an event re-fetch.
type EventEditor struct {
	api      EventManager
	catalog  *Catalog
	notifier Notifier
	logger   *slog.Logger

	mu        sync.Mutex
	state     EditorState
	editingID string
	draft     model.Event
}

// NewEventEditor constructs the organizer workflow.
func NewEventEditor(api EventManager, catalog *Catalog, notifier Notifier, logger *slog.Logger) *EventEditor {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EventEditor{
		api:      api,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
	}
}

// State reports the current form state.
func (e *EventEditor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns a copy of the form contents and the id of the event being
// edited, which is empty for a new event.
func (e *EventEditor) Draft() (model.Event, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	draft := e.draft
	draft.TicketTypes = slices.Clone(e.draft.TicketTypes)
	return draft, e.editingID
}

// New opens a blank form with a single Standard ticket type.
func (e *EventEditor) New() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = EditorEditing
	e.editingID = ""
	e.draft = model.Event{
		TicketTypes: []model.TicketType{{ID: newTicketTypeID(), Name: defaultTicketTypeName}},
	}
}

// Edit opens the form pre-populated from an existing event.
func (e *EventEditor) Edit(event model.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = EditorEditing
	e.editingID = event.ID
	e.draft = event
	e.draft.TicketTypes = slices.Clone(event.TicketTypes)
	if len(e.draft.TicketTypes) == 0 {
		e.draft.TicketTypes = []model.TicketType{{ID: newTicketTypeID(), Name: defaultTicketTypeName}}
	}
}

// Cancel discards the draft.
func (e *EventEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = EditorIdle
	e.editingID = ""
	e.draft = model.Event{}
}

// SetField sets one event-level form field.
func (e *EventEditor) SetField(field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open() {
		return ErrNotEditing
	}
	switch field {
	case FieldName:
		e.draft.Name = value
	case FieldDate:
		e.draft.Date = value
	case FieldTime:
		e.draft.Time = value
	case FieldLocation:
		e.draft.Location = value
	case FieldDescription:
		e.draft.Description = value
	default:
		return invalid(field, fmt.Sprintf("Unknown field %q.", field))
	}
	e.state = EditorEditing
	return nil
}

// SetTicketField sets one field of the i-th ticket type from form text.
// Numeric text that does not parse leaves the draft unchanged.
func (e *EventEditor) SetTicketField(i int, field, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open() {
		return ErrNotEditing
	}
	if i < 0 || i >= len(e.draft.TicketTypes) {
		return invalid("ticketTypes", fmt.Sprintf("No ticket type at position %d.", i+1))
	}
	tt := &e.draft.TicketTypes[i]
	switch field {
	case TicketFieldName:
		tt.Name = text
	case TicketFieldPrice:
		v, err := inventory.ParsePrice(text)
		if err != nil {
			return invalid(field, "Price must be a non-negative number.")
		}
		tt.Price = v
	case TicketFieldCapacity:
		v, err := inventory.ParseCount(text)
		if err != nil {
			return invalid(field, "Capacity must be a whole number of zero or more.")
		}
		tt.Capacity = v
	case TicketFieldSold:
		v, err := inventory.ParseCount(text)
		if err != nil {
			return invalid(field, "Sold must be a whole number of zero or more.")
		}
		tt.Sold = v
	default:
		return invalid(field, fmt.Sprintf("Unknown ticket field %q.", field))
	}
	e.state = EditorEditing
	return nil
}

// AddTicketType appends an empty ticket type row.
func (e *EventEditor) AddTicketType() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open() {
		return ErrNotEditing
	}
	e.draft.TicketTypes = append(e.draft.TicketTypes, model.TicketType{ID: newTicketTypeID()})
	return nil
}

// RemoveTicketType removes the i-th row. The last row cannot be removed.
func (e *EventEditor) RemoveTicketType(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open() {
		return ErrNotEditing
	}
	if len(e.draft.TicketTypes) <= 1 {
		return ErrLastTicketType
	}
	if i < 0 || i >= len(e.draft.TicketTypes) {
		return invalid("ticketTypes", fmt.Sprintf("No ticket type at position %d.", i+1))
	}
	e.draft.TicketTypes = slices.Delete(e.draft.TicketTypes, i, i+1)
	return nil
}

// Save validates the draft locally and submits it as a create or update.
// The response must carry a message to count as success. Events are
// re-fetched after every exchange with the backend.
func (e *EventEditor) Save(ctx context.Context) (model.MutationResult, error) {
	e.mu.Lock()
	if !e.open() {
		e.mu.Unlock()
		return model.MutationResult{}, ErrNotEditing
	}
	if err := validateDraft(e.draft); err != nil {
		e.mu.Unlock()
		e.notifier.Notify(Notice{Kind: NoticeError, Message: err.Error()})
		return model.MutationResult{}, err
	}
	id := e.editingID
	payload := inventory.Payload(e.draft)
	e.state = EditorSaving
	e.mu.Unlock()

	sess := e.catalog.Session()
	var (
		result model.MutationResult
		err    error
	)
	if id == "" {
		e.logger.Info("creating event", "name", payload.Name)
		result, err = e.api.CreateEvent(ctx, sess, payload)
	} else {
		e.logger.Info("updating event", "event", id)
		result, err = e.api.UpdateEvent(ctx, sess, id, payload)
	}

	if err != nil {
		e.setState(EditorFailed)
		err = report(e.notifier, e.logger, sess, "An error occurred while saving the event", err)
		e.refetch(ctx, err)
		return model.MutationResult{}, err
	}
	if result.Message == "" {
		e.setState(EditorFailed)
		msg := "Failed to create event."
		if id != "" {
			msg = "Failed to update event."
		}
		e.notifier.Notify(Notice{Kind: NoticeError, Message: msg})
		e.refetch(ctx, nil)
		return result, fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	e.mu.Lock()
	e.state = EditorIdle
	e.editingID = ""
	e.draft = model.Event{}
	e.mu.Unlock()

	msg := "Event created successfully!"
	if id != "" {
		msg = "Event updated successfully!"
	}
	e.notifier.Notify(Notice{Kind: NoticeSuccess, Message: msg})
	e.refetch(ctx, nil)
	return result, nil
}

// ToggleStatus flips an event between draft and published with a
// status-only update. It bypasses form validation.
func (e *EventEditor) ToggleStatus(ctx context.Context, event model.Event) (model.Status, error) {
	status := event.Status.Toggled()
	sess := e.catalog.Session()
	e.logger.Info("updating event status", "event", event.ID, "status", status)
	if _, err := e.api.UpdateEventStatus(ctx, sess, event.ID, status); err != nil {
		err = report(e.notifier, e.logger, sess, "An error occurred while updating event status", err)
		return event.Status, err
	}
	e.notifier.Notify(Notice{Kind: NoticeSuccess, Message: fmt.Sprintf("Event status updated to %s!", status)})
	e.refetch(ctx, nil)
	return status, nil
}

// Delete removes an event and re-fetches the list.
func (e *EventEditor) Delete(ctx context.Context, id string) error {
	sess := e.catalog.Session()
	e.logger.Info("deleting event", "event", id)
	if _, err := e.api.DeleteEvent(ctx, sess, id); err != nil {
		return report(e.notifier, e.logger, sess, "Failed to delete event", err)
	}
	e.notifier.Notify(Notice{Kind: NoticeSuccess, Message: "Event deleted successfully!"})
	e.refetch(ctx, nil)
	return nil
}

// Registrants lists who registered for one of the organizer's events.
func (e *EventEditor) Registrants(ctx context.Context, eventID string) ([]model.Registration, error) {
	sess := e.catalog.Session()
	regs, err := e.api.EventRegistrations(ctx, sess, eventID)
	if err != nil {
		return nil, report(e.notifier, e.logger, sess, "Failed to load registrants", err)
	}
	return regs, nil
}

// ValidateTicket checks a ticket presented at the door.
func (e *EventEditor) ValidateTicket(ctx context.Context, ticketID string) (model.ValidateTicketResult, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		err := invalid("ticketId", "Please enter a ticket ID.")
		e.notifier.Notify(Notice{Kind: NoticeError, Message: err.Error()})
		return model.ValidateTicketResult{}, err
	}
	sess := e.catalog.Session()
	result, err := e.api.ValidateTicket(ctx, sess, ticketID)
	if err != nil {
		return model.ValidateTicketResult{}, report(e.notifier, e.logger, sess, "Failed to validate ticket", err)
	}
	return result, nil
}

func (e *EventEditor) setState(s EditorState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// open reports whether a draft is loaded. Caller holds e.mu.
func (e *EventEditor) open() bool {
	return e.state == EditorEditing || e.state == EditorFailed
}

// refetch reloads the event list unless the session just ended.
func (e *EventEditor) refetch(ctx context.Context, cause error) {
	if cause != nil && isAuthFailure(cause) {
		return
	}
	// Load failures are surfaced by the catalog.
	_ = e.catalog.RefreshEvents(ctx)
}

func validateDraft(draft model.Event) error {
	if strings.TrimSpace(draft.Name) == "" {
		return invalid(FieldName, "Please enter an event name.")
	}
	if _, err := time.Parse(dateLayout, draft.Date); err != nil {
		return invalid(FieldDate, "Please enter the date as YYYY-MM-DD.")
	}
	if _, err := time.Parse(timeLayout, draft.Time); err != nil {
		return invalid(FieldTime, "Please enter the time as HH:MM.")
	}
	if strings.TrimSpace(draft.Location) == "" {
		return invalid(FieldLocation, "Please enter a location.")
	}
	if strings.TrimSpace(draft.Description) == "" {
		return invalid(FieldDescription, "Please enter a description.")
	}
	if len(draft.TicketTypes) == 0 {
		return ErrLastTicketType
	}
	for i, tt := range draft.TicketTypes {
		if strings.TrimSpace(tt.Name) == "" {
			return invalid("ticketTypes", fmt.Sprintf("Ticket type %d needs a name.", i+1))
		}
		if tt.Sold > tt.Capacity {
			return invalid("ticketTypes", fmt.Sprintf("%s cannot have more sold (%d) than capacity (%d).", tt.Name, tt.Sold, tt.Capacity))
		}
	}
	return nil
}
