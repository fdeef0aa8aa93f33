package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Shivanand-hulikatti/eventmaster/internal/client"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

func newEditor(t *testing.T, backend *fakeBackend) (*EventEditor, *Catalog, *recorder) {
	t.Helper()
	rec := &recorder{}
	catalog := loadedCatalog(t, backend, testSession(t, model.RoleOrganizer), rec)
	return NewEventEditor(backend, catalog, rec, nil), catalog, rec
}

func fillDraft(t *testing.T, e *EventEditor) {
	t.Helper()
	fields := map[string]string{
		FieldName:        "Go Meetup",
		FieldDate:        "2026-12-01",
		FieldTime:        "18:00",
		FieldLocation:    "Library",
		FieldDescription: "Monthly meetup",
	}
	for field, value := range fields {
		if err := e.SetField(field, value); err != nil {
			t.Fatalf("SetField(%s): %v", field, err)
		}
	}
	if err := e.SetTicketField(0, TicketFieldPrice, "12.5"); err != nil {
		t.Fatalf("SetTicketField(price): %v", err)
	}
	if err := e.SetTicketField(0, TicketFieldCapacity, "40"); err != nil {
		t.Fatalf("SetTicketField(capacity): %v", err)
	}
}

func TestNewDraftHasStandardTicketType(t *testing.T) {
	t.Parallel()

	editor, _, _ := newEditor(t, newFakeBackend())
	editor.New()

	draft, id := editor.Draft()
	if id != "" {
		t.Fatalf("editing id = %q, want empty for a new event", id)
	}
	if len(draft.TicketTypes) != 1 {
		t.Fatalf("ticket types = %d, want 1", len(draft.TicketTypes))
	}
	tt := draft.TicketTypes[0]
	if tt.Name != "Standard" || !strings.HasPrefix(tt.ID, "tkt-") {
		t.Fatalf("ticket type = %+v", tt)
	}
	if editor.State() != EditorEditing {
		t.Fatalf("state = %s", editor.State())
	}
}

func TestRemoveLastTicketTypeIsRejected(t *testing.T) {
	t.Parallel()

	editor, _, _ := newEditor(t, newFakeBackend())
	editor.New()

	if err := editor.RemoveTicketType(0); !errors.Is(err, ErrLastTicketType) {
		t.Fatalf("RemoveTicketType error = %v, want ErrLastTicketType", err)
	}
	if draft, _ := editor.Draft(); len(draft.TicketTypes) != 1 {
		t.Fatalf("ticket types = %d, want 1", len(draft.TicketTypes))
	}

	if err := editor.AddTicketType(); err != nil {
		t.Fatalf("AddTicketType: %v", err)
	}
	if err := editor.RemoveTicketType(0); err != nil {
		t.Fatalf("RemoveTicketType with two rows: %v", err)
	}
	if draft, _ := editor.Draft(); len(draft.TicketTypes) != 1 || draft.TicketTypes[0].Name != "" {
		t.Fatalf("remaining rows = %+v, want the added row", draft.TicketTypes)
	}
}

func TestSetTicketFieldRejectsBadNumbers(t *testing.T) {
	t.Parallel()

	editor, _, _ := newEditor(t, newFakeBackend())
	editor.New()

	tests := []struct {
		field, text string
	}{
		{TicketFieldPrice, "abc"},
		{TicketFieldPrice, "-1"},
		{TicketFieldCapacity, "2.5"},
		{TicketFieldSold, "-3"},
	}
	for _, tt := range tests {
		if err := editor.SetTicketField(0, tt.field, tt.text); !errors.Is(err, ErrValidation) {
			t.Errorf("SetTicketField(%s, %q) error = %v, want ErrValidation", tt.field, tt.text, err)
		}
	}
	draft, _ := editor.Draft()
	if tt := draft.TicketTypes[0]; tt.Price != 0 || tt.Capacity != 0 || tt.Sold != 0 {
		t.Fatalf("draft changed by rejected input: %+v", tt)
	}
}

func TestSaveValidatesLocally(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{name: "missing name", field: FieldName, value: " ", want: "Please enter an event name."},
		{name: "bad date", field: FieldDate, value: "01/12/2026", want: "Please enter the date as YYYY-MM-DD."},
		{name: "bad time", field: FieldTime, value: "6pm", want: "Please enter the time as HH:MM."},
		{name: "missing location", field: FieldLocation, value: "", want: "Please enter a location."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := newFakeBackend()
			editor, _, _ := newEditor(t, backend)
			editor.New()
			fillDraft(t, editor)
			if err := editor.SetField(tt.field, tt.value); err != nil {
				t.Fatalf("SetField: %v", err)
			}

			_, err := editor.Save(context.Background())
			if err == nil || err.Error() != tt.want {
				t.Fatalf("Save error = %v, want %q", err, tt.want)
			}
			if n := backend.count("CreateEvent"); n != 0 {
				t.Fatalf("CreateEvent called %d times, want 0", n)
			}
			if editor.State() != EditorEditing {
				t.Fatalf("state = %s, want editing", editor.State())
			}
		})
	}
}

func TestSaveRejectsOversoldTicketType(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	editor, _, _ := newEditor(t, backend)
	editor.New()
	fillDraft(t, editor)
	if err := editor.SetTicketField(0, TicketFieldSold, "41"); err != nil {
		t.Fatalf("SetTicketField: %v", err)
	}

	if _, err := editor.Save(context.Background()); !errors.Is(err, ErrValidation) {
		t.Fatalf("Save error = %v, want ErrValidation", err)
	}
	if n := backend.count("CreateEvent"); n != 0 {
		t.Fatalf("CreateEvent called %d times, want 0", n)
	}
}

func TestSaveCreatesAndRefetches(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	editor, _, rec := newEditor(t, backend)
	editor.New()
	fillDraft(t, editor)

	if _, err := editor.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(backend.created) != 1 {
		t.Fatalf("created = %d payloads, want 1", len(backend.created))
	}
	got := backend.created[0]
	if got.Name != "Go Meetup" || got.Status != "" {
		t.Fatalf("payload = %+v", got)
	}
	if tt := got.TicketTypes[0]; tt.Price != "12.5" || tt.Capacity != 40 || tt.Sold != 0 || tt.Name != "Standard" {
		t.Fatalf("ticket payload = %+v", tt)
	}
	if editor.State() != EditorIdle {
		t.Fatalf("state = %s, want idle", editor.State())
	}
	if got := rec.last(); got != (Notice{Kind: NoticeSuccess, Message: "Event created successfully!"}) {
		t.Fatalf("notice = %+v", got)
	}
	if n := backend.count("ListEvents"); n != 2 {
		t.Fatalf("ListEvents called %d times, want 2", n)
	}
}

func TestSaveWithoutMessageKeepsDraft(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.mutationResult = model.MutationResult{}
	editor, _, rec := newEditor(t, backend)
	editor.New()
	fillDraft(t, editor)

	_, err := editor.Save(context.Background())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("Save error = %v, want ErrRejected", err)
	}
	if editor.State() != EditorFailed {
		t.Fatalf("state = %s, want failed", editor.State())
	}
	if draft, _ := editor.Draft(); draft.Name != "Go Meetup" {
		t.Fatalf("draft lost: %+v", draft)
	}
	if got := rec.last().Message; got != "Failed to create event." {
		t.Fatalf("notice = %q", got)
	}
	if n := backend.count("ListEvents"); n != 2 {
		t.Fatalf("ListEvents called %d times, want 2", n)
	}
}

func TestSaveErrorMessage(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.mutationErr = &client.APIError{StatusCode: 400, Message: "Invalid date"}
	editor, _, rec := newEditor(t, backend)
	editor.New()
	fillDraft(t, editor)

	if _, err := editor.Save(context.Background()); err == nil {
		t.Fatal("Save succeeded, want error")
	}
	if got := rec.last().Message; got != "An error occurred while saving the event: Invalid date" {
		t.Fatalf("notice = %q", got)
	}
	if editor.State() != EditorFailed {
		t.Fatalf("state = %s, want failed", editor.State())
	}
}

func TestEditRoundTripsPayload(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(rawEvent("evt-1", "Concert",
		rawTicket("tkt-ga", "General", 25.5, 100, 10),
		rawTicket("tkt-vip", "VIP", 80, 5, 5),
	))
	editor, catalog, rec := newEditor(t, backend)

	editor.Edit(mustEvent(t, catalog, "evt-1"))
	if _, err := editor.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := backend.updated["evt-1"]
	if !ok {
		t.Fatal("UpdateEvent not called for evt-1")
	}
	want := []model.TicketTypePayload{
		{ID: "tkt-ga", Name: "General", Price: "25.5", Capacity: 100, Sold: 10},
		{ID: "tkt-vip", Name: "VIP", Price: "80", Capacity: 5, Sold: 5},
	}
	if len(got.TicketTypes) != len(want) {
		t.Fatalf("ticket types = %+v", got.TicketTypes)
	}
	for i := range want {
		if got.TicketTypes[i] != want[i] {
			t.Errorf("ticket type %d = %+v, want %+v", i, got.TicketTypes[i], want[i])
		}
	}
	if got.Status != model.StatusPublished {
		t.Fatalf("status = %q, want published", got.Status)
	}
	if got := rec.last().Message; got != "Event updated successfully!" {
		t.Fatalf("notice = %q", got)
	}
}

func TestToggleStatusIsStatusOnly(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(rawEvent("evt-1", "Concert", rawTicket("tkt-ga", "General", 25, 100, 10)))
	editor, catalog, rec := newEditor(t, backend)

	status, err := editor.ToggleStatus(context.Background(), mustEvent(t, catalog, "evt-1"))
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if status != model.StatusDraft || backend.statusUpdate["evt-1"] != model.StatusDraft {
		t.Fatalf("status = %q, sent %q, want draft", status, backend.statusUpdate["evt-1"])
	}
	if n := backend.count("UpdateEvent"); n != 0 {
		t.Fatalf("full update sent %d times, want 0", n)
	}
	if got := rec.last().Message; got != "Event status updated to draft!" {
		t.Fatalf("notice = %q", got)
	}
	if n := backend.count("ListEvents"); n != 2 {
		t.Fatalf("ListEvents called %d times, want 2", n)
	}
}

func TestDeleteRefetchOmitsEvent(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(
		rawEvent("evt-1", "Concert", rawTicket("tkt-ga", "General", 25, 100, 10)),
		rawEvent("evt-2", "Demo", rawTicket("tkt-d", "Standard", 0, 2, 2)),
	)
	editor, catalog, _ := newEditor(t, backend)

	if err := editor.Delete(context.Background(), "evt-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := catalog.Event("evt-1"); ok {
		t.Fatal("evt-1 still in catalog after delete")
	}
	if _, ok := catalog.Event("evt-2"); !ok {
		t.Fatal("evt-2 missing after delete of evt-1")
	}
}

func TestDeleteFailure(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(rawEvent("evt-1", "Concert", rawTicket("tkt-ga", "General", 25, 100, 10)))
	backend.mutationErr = &client.APIError{StatusCode: 404, Message: "Event not found"}
	editor, catalog, rec := newEditor(t, backend)

	err := editor.Delete(context.Background(), "evt-1")
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("Delete error = %v, want ErrNotFound", err)
	}
	if got := rec.last().Message; got != "Failed to delete event: Event not found" {
		t.Fatalf("notice = %q", got)
	}
	if _, ok := catalog.Event("evt-1"); !ok {
		t.Fatal("evt-1 dropped from catalog without a re-fetch")
	}
}

func TestRegistrantsAndValidateTicket(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.regs = []model.Registration{
		{RegistrationID: "reg-1", EventID: "evt-1", AttendeeName: "Ada"},
		{RegistrationID: "reg-2", EventID: "evt-2", AttendeeName: "Grace"},
	}
	editor, _, _ := newEditor(t, backend)

	regs, err := editor.Registrants(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("Registrants: %v", err)
	}
	if len(regs) != 1 || regs[0].AttendeeName != "Ada" {
		t.Fatalf("registrants = %+v", regs)
	}

	result, err := editor.ValidateTicket(context.Background(), " reg-2 ")
	if err != nil {
		t.Fatalf("ValidateTicket: %v", err)
	}
	if !result.Valid || result.Registration.AttendeeName != "Grace" {
		t.Fatalf("result = %+v", result)
	}

	if _, err := editor.ValidateTicket(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("ValidateTicket(\"\") error = %v, want ErrValidation", err)
	}
	if n := backend.count("ValidateTicket"); n != 1 {
		t.Fatalf("ValidateTicket called %d times, want 1", n)
	}
}
