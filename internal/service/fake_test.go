package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

// fakeBackend is an in-memory Backend that records calls.
type fakeBackend struct {
	mu     sync.Mutex
	events []model.RawEvent
	regs   []model.Registration

	listErr        error
	registerResult model.RegisterResult
	registerErr    error
	mutationResult model.MutationResult
	mutationErr    error

	calls        map[string]int
	registered   []model.RegisterRequest
	created      []model.EventPayload
	updated      map[string]model.EventPayload
	statusUpdate map[string]model.Status
}

func newFakeBackend(events ...model.RawEvent) *fakeBackend {
	return &fakeBackend{
		events:         events,
		registerResult: model.RegisterResult{Message: "Registered", RegistrationID: "reg-1", TicketURL: "https://tickets.example.com/reg-1.pdf"},
		mutationResult: model.MutationResult{Message: "OK"},
		calls:          map[string]int{},
		updated:        map[string]model.EventPayload{},
		statusUpdate:   map[string]model.Status{},
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) setEvents(events ...model.RawEvent) {
	f.mu.Lock()
	f.events = events
	f.mu.Unlock()
}

func (f *fakeBackend) ListEvents(context.Context, *session.Session) ([]model.RawEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListEvents"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.RawEvent(nil), f.events...), nil
}

func (f *fakeBackend) MyRegistrations(context.Context, *session.Session) ([]model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["MyRegistrations"]++
	return append([]model.Registration(nil), f.regs...), nil
}

func (f *fakeBackend) Register(_ context.Context, _ *session.Session, req model.RegisterRequest) (model.RegisterResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Register"]++
	f.registered = append(f.registered, req)
	return f.registerResult, f.registerErr
}

func (f *fakeBackend) CreateEvent(_ context.Context, _ *session.Session, payload model.EventPayload) (model.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateEvent"]++
	f.created = append(f.created, payload)
	return f.mutationResult, f.mutationErr
}

func (f *fakeBackend) UpdateEvent(_ context.Context, _ *session.Session, id string, payload model.EventPayload) (model.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateEvent"]++
	f.updated[id] = payload
	return f.mutationResult, f.mutationErr
}

func (f *fakeBackend) UpdateEventStatus(_ context.Context, _ *session.Session, id string, status model.Status) (model.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateEventStatus"]++
	f.statusUpdate[id] = status
	return f.mutationResult, f.mutationErr
}

func (f *fakeBackend) DeleteEvent(_ context.Context, _ *session.Session, id string) (model.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteEvent"]++
	if f.mutationErr != nil {
		return model.MutationResult{}, f.mutationErr
	}
	for i, e := range f.events {
		if e.ID == id {
			f.events = append(f.events[:i:i], f.events[i+1:]...)
			break
		}
	}
	return f.mutationResult, nil
}

func (f *fakeBackend) EventRegistrations(_ context.Context, _ *session.Session, eventID string) ([]model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["EventRegistrations"]++
	var out []model.Registration
	for _, r := range f.regs {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBackend) ValidateTicket(_ context.Context, _ *session.Session, ticketID string) (model.ValidateTicketResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ValidateTicket"]++
	for _, r := range f.regs {
		if r.RegistrationID == ticketID {
			reg := r
			return model.ValidateTicketResult{Valid: true, Message: "Ticket is valid", Registration: &reg}, nil
		}
	}
	return model.ValidateTicketResult{Valid: false, Message: "Ticket not found"}, nil
}

// recorder collects notices.
type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func (r *recorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func rawTicket(id, name string, price float64, capacity, sold int) model.RawTicketType {
	return model.RawTicketType{
		ID:       id,
		Name:     name,
		Price:    json.RawMessage(strconv.FormatFloat(price, 'f', -1, 64)),
		Capacity: json.RawMessage(strconv.Itoa(capacity)),
		Sold:     json.RawMessage(strconv.Itoa(sold)),
	}
}

func rawEvent(id, name string, types ...model.RawTicketType) model.RawEvent {
	return model.RawEvent{
		ID:          id,
		OrganizerID: "org-1",
		Name:        name,
		Date:        "2026-11-20",
		Time:        "19:30",
		Location:    "Main Hall",
		Description: name + " description",
		Status:      model.StatusPublished,
		TicketTypes: types,
	}
}

func testSession(t *testing.T, role model.Role) *session.Session {
	t.Helper()
	token, err := session.MintUnsigned("user-1", "user@example.com", role, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	s, err := session.New(token)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

// loadedCatalog returns a catalog that has fetched the backend's events once.
func loadedCatalog(t *testing.T, backend *fakeBackend, sess *session.Session, n Notifier) *Catalog {
	t.Helper()
	c := NewCatalog(backend, sess, n, nil)
	if err := c.RefreshEvents(context.Background()); err != nil {
		t.Fatalf("RefreshEvents: %v", err)
	}
	return c
}
