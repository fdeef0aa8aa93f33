package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Shivanand-hulikatti/eventmaster/internal/client"
	"github.com/Shivanand-hulikatti/eventmaster/internal/inventory"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

// RegistrationState is a state of the attendee registration workflow.
type RegistrationState int

const (
	StateBrowsing RegistrationState = iota
	StateEventSelected
	StateFormFilled
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s RegistrationState) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateEventSelected:
		return "event-selected"
	case StateFormFilled:
		return "form-filled"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("RegistrationState(%d)", int(s))
}

// Notices shown by the registration workflow.
const (
	MsgRegistered   = "Registration successful! Please download your ticket."
	MsgNoTicketLink = "Ticket generated, but no download link returned. Please check your registrations."
)

// RegistrationForm is the attendee's input.
type RegistrationForm struct {
	AttendeeName  string
	AttendeeEmail string
	TicketTypeID  string
}

func (f RegistrationForm) complete() bool {
	return strings.TrimSpace(f.AttendeeName) != "" &&
		strings.TrimSpace(f.AttendeeEmail) != "" &&
		f.TicketTypeID != ""
}

// RegistrationFlow drives one attendee session:
//
//	Browsing -> EventSelected -> FormFilled -> Submitting -> {Succeeded, Failed}
//
// Succeeded and Failed are per-attempt outcomes reported by LastOutcome.
// Success deselects and returns to Browsing; failure returns to
// EventSelected with the form kept for a retry. Submissions are not
// debounced and the backend decides oversell.
type RegistrationFlow struct {
	api      Registrar
	catalog  *Catalog
	notifier Notifier
	logger   *slog.Logger

	mu          sync.Mutex
	state       RegistrationState
	selected    *model.Event
	form        RegistrationForm
	submitting  int
	lastOutcome RegistrationState
	attempted   bool
}

// NewRegistrationFlow constructs the attendee workflow.
func NewRegistrationFlow(api Registrar, catalog *Catalog, notifier Notifier, logger *slog.Logger) *RegistrationFlow {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RegistrationFlow{
		api:      api,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
	}
}

// State reports the current workflow state.
func (f *RegistrationFlow) State() RegistrationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting > 0 {
		return StateSubmitting
	}
	return f.state
}

// touch re-derives the state after a form edit. Caller holds f.mu.
func (f *RegistrationFlow) touch() {
	switch {
	case f.selected == nil:
		f.state = StateBrowsing
	case f.form.complete():
		f.state = StateFormFilled
	default:
		f.state = StateEventSelected
	}
}

// LastOutcome reports StateSucceeded or StateFailed for the most recent
// submission attempt; ok is false before the first attempt.
func (f *RegistrationFlow) LastOutcome() (state RegistrationState, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOutcome, f.attempted
}

// Select picks an event. Selecting the selected event again deselects it.
// A sold-out event cannot be selected.
func (f *RegistrationFlow) Select(event model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.selected != nil && f.selected.ID == event.ID {
		f.selected = nil
		f.state = StateBrowsing
		return nil
	}
	if inventory.IsSoldOut(event) {
		return ErrSoldOut
	}
	f.selected = &event
	if _, ok := inventory.FindTicketType(event, f.form.TicketTypeID); !ok {
		f.form.TicketTypeID = ""
	}
	f.state = StateEventSelected
	return nil
}

// Deselect returns to Browsing. The form is kept.
func (f *RegistrationFlow) Deselect() {
	f.mu.Lock()
	f.selected = nil
	f.state = StateBrowsing
	f.mu.Unlock()
}

// Selected returns the selected event.
func (f *RegistrationFlow) Selected() (model.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selected == nil {
		return model.Event{}, false
	}
	return *f.selected, true
}

// Options lists the ticket types of the selected event.
func (f *RegistrationFlow) Options() []inventory.Option {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selected == nil {
		return nil
	}
	return inventory.TicketOptions(*f.selected)
}

// Form returns the current form contents.
func (f *RegistrationFlow) Form() RegistrationForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// SetAttendee fills in the attendee's name and email.
func (f *RegistrationFlow) SetAttendee(name, email string) {
	f.mu.Lock()
	f.form.AttendeeName = name
	f.form.AttendeeEmail = email
	f.touch()
	f.mu.Unlock()
}

// SetName sets the attendee's full name.
func (f *RegistrationFlow) SetName(name string) {
	f.mu.Lock()
	f.form.AttendeeName = name
	f.touch()
	f.mu.Unlock()
}

// SetEmail sets the attendee's email address.
func (f *RegistrationFlow) SetEmail(email string) {
	f.mu.Lock()
	f.form.AttendeeEmail = email
	f.touch()
	f.mu.Unlock()
}

// SetTicketType chooses a ticket type of the selected event. Sold-out
// types are disabled and cannot be chosen; an empty id clears the choice.
func (f *RegistrationFlow) SetTicketType(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id == "" {
		f.form.TicketTypeID = ""
		f.touch()
		return nil
	}
	if f.selected == nil {
		return invalid("event", "Please select an event first.")
	}
	tt, ok := inventory.FindTicketType(*f.selected, id)
	if !ok {
		return invalid("ticketTypeId", "Please select a ticket type.")
	}
	if !inventory.Available(tt) {
		return ErrTicketSoldOut
	}
	f.form.TicketTypeID = id
	f.touch()
	return nil
}

// Submit validates the form locally and, only if it passes, calls the
// backend. Local rejection issues no network call.
func (f *RegistrationFlow) Submit(ctx context.Context) (model.RegisterResult, error) {
	f.mu.Lock()
	req, err := f.guard()
	if err != nil {
		f.mu.Unlock()
		f.notifier.Notify(Notice{Kind: NoticeError, Message: err.Error()})
		return model.RegisterResult{}, err
	}
	f.submitting++
	f.mu.Unlock()

	sess := f.catalog.Session()
	f.logger.Info("submitting registration", "event", req.EventID, "ticket_type", req.TicketTypeID)
	result, err := f.api.Register(ctx, sess, req)

	f.mu.Lock()
	f.submitting--
	f.attempted = true
	if err == nil && result.Message == "" {
		detail := result.Error
		if detail == "" {
			detail = "Unknown error."
		}
		err = fmt.Errorf("%w: %s", ErrRejected, detail)
	}
	if err != nil {
		f.lastOutcome = StateFailed
		f.state = StateEventSelected
		if f.selected == nil {
			f.state = StateBrowsing
		}
		f.mu.Unlock()
		return model.RegisterResult{}, f.failed(err)
	}

	f.lastOutcome = StateSucceeded
	f.form = RegistrationForm{}
	f.selected = nil
	f.state = StateBrowsing
	f.mu.Unlock()

	f.logger.Info("registered", "event", req.EventID, "registration", result.RegistrationID)
	f.notifier.Notify(Notice{Kind: NoticeSuccess, Message: MsgRegistered})
	if result.TicketURL == "" {
		f.notifier.Notify(Notice{Kind: NoticeInfo, Message: MsgNoTicketLink})
	}

	// Refresh failures are already surfaced by the catalog.
	_ = f.catalog.Refresh(ctx)
	return result, nil
}

// guard runs the local registration checks against the freshest copy of
// the selected event. Caller holds f.mu.
func (f *RegistrationFlow) guard() (model.RegisterRequest, error) {
	if f.selected == nil {
		return model.RegisterRequest{}, invalid("event", "Please select an event first.")
	}
	event := *f.selected
	if fresh, ok := f.catalog.Event(event.ID); ok {
		event = fresh
	}

	form := f.form
	if form.TicketTypeID == "" {
		return model.RegisterRequest{}, invalid("ticketTypeId", "Please select a ticket type.")
	}
	tt, ok := inventory.FindTicketType(event, form.TicketTypeID)
	if !ok {
		return model.RegisterRequest{}, invalid("ticketTypeId", "Please select a ticket type.")
	}
	if !inventory.Available(tt) {
		return model.RegisterRequest{}, invalid("ticketTypeId", fmt.Sprintf("%s is sold out.", tt.Name))
	}

	name := strings.TrimSpace(form.AttendeeName)
	email := strings.TrimSpace(form.AttendeeEmail)
	if name == "" {
		return model.RegisterRequest{}, invalid("attendeeName", "Please enter your full name.")
	}
	if email == "" {
		return model.RegisterRequest{}, invalid("attendeeEmail", "Please enter your email address.")
	}
	if !isValidEmail(email) {
		return model.RegisterRequest{}, invalid("attendeeEmail", "Please enter a valid email address.")
	}

	return model.RegisterRequest{
		EventID:       event.ID,
		TicketTypeID:  tt.ID,
		AttendeeName:  name,
		AttendeeEmail: email,
	}, nil
}

// failed surfaces a failed submission. The backend's message is shown
// verbatim.
func (f *RegistrationFlow) failed(err error) error {
	f.logger.Warn("registration failed", "error", err)
	if isAuthFailure(err) {
		f.notifier.Notify(Notice{Kind: NoticeError, Message: SignedOutMessage})
		return signedOut(f.catalog.Session(), err)
	}
	msg := client.Message(err)
	if errors.Is(err, ErrRejected) {
		msg = "Failed to register: " + strings.TrimPrefix(err.Error(), ErrRejected.Error()+": ")
	}
	f.notifier.Notify(Notice{Kind: NoticeError, Message: msg})
	return err
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
