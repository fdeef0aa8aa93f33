package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

func testSession(t *testing.T, role model.Role, ttl time.Duration) *session.Session {
	t.Helper()
	token, err := session.MintUnsigned("user-1", "u@example.com", role, ttl, time.Now())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	s, err := session.New(token)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

func TestListEventsSendsBearer(t *testing.T) {
	t.Parallel()

	sess := testSession(t, model.RoleAttendee, time.Hour)
	bearer, _ := sess.Bearer()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/dev/events" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+bearer {
			t.Errorf("unexpected authorization %q", got)
		}
		_, _ = io.WriteString(w, `[{"id":"evt-1","name":"Demo","status":"published","ticketTypes":[{"id":"t","price":"5","capacity":"2","sold":1}]}]`)
	}))
	defer srv.Close()

	c := New(srv.URL + "/dev/")
	events, err := c.ListEvents(context.Background(), sess)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].ID != "evt-1" {
		t.Fatalf("unexpected events %+v", events)
	}
	if string(events[0].TicketTypes[0].Capacity) != `"2"` {
		t.Fatalf("raw capacity should be kept as received, got %s", events[0].TicketTypes[0].Capacity)
	}
}

func TestNilSessionIsUnauthenticated(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no authorization header")
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthorized"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).MyRegistrations(context.Background(), nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if Message(err) != "Unauthorized" {
		t.Fatalf("expected verbatim message, got %q", Message(err))
	}
}

func TestExpiredSessionFailsBeforeSending(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	sess := testSession(t, model.RoleAttendee, -time.Minute)
	_, err := New(srv.URL).ListEvents(context.Background(), sess)
	if !errors.Is(err, session.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if called {
		t.Fatalf("expired session must not reach the network")
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantIs      error
		wantNotIs   error
	}{
		{
			name:        "message verbatim",
			status:      http.StatusConflict,
			body:        `{"message":"Sold out"}`,
			wantMessage: "Sold out",
		},
		{
			name:        "empty message falls back",
			status:      http.StatusInternalServerError,
			body:        `{"message":""}`,
			wantMessage: GenericErrorMessage,
		},
		{
			name:        "non json falls back",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: GenericErrorMessage,
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"message":"Event not found"}`,
			wantMessage: "Event not found",
			wantIs:      ErrNotFound,
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			body:        `{"message":"You can only manage your own events"}`,
			wantMessage: "You can only manage your own events",
			wantIs:      ErrForbidden,
			wantNotIs:   ErrUnauthorized,
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"message":"Token expired"}`,
			wantMessage: "Token expired",
			wantIs:      ErrUnauthorized,
			wantNotIs:   ErrForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL).Register(context.Background(), nil, model.RegisterRequest{EventID: "e"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Error() != tt.wantMessage {
				t.Fatalf("expected message %q, got %q", tt.wantMessage, apiErr.Error())
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Fatalf("expected errors.Is(%v)", tt.wantIs)
			}
			if tt.wantNotIs != nil && errors.Is(err, tt.wantNotIs) {
				t.Fatalf("unexpected errors.Is(%v)", tt.wantNotIs)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).ListEvents(context.Background(), nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestMutationsSendExpectedBodies(t *testing.T) {
	t.Parallel()

	type call struct {
		method string
		path   string
		body   map[string]any
	}
	calls := make(chan call, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls <- call{method: r.Method, path: r.URL.EscapedPath(), body: body}
		_, _ = io.WriteString(w, `{"message":"ok","ticketUrl":"https://t/1"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.UpdateEventStatus(ctx, nil, "evt 1", model.StatusPublished); err != nil {
		t.Fatalf("status: %v", err)
	}
	got := <-calls
	if got.method != http.MethodPut || got.path != "/events/evt%201" {
		t.Fatalf("unexpected status call %s %s", got.method, got.path)
	}
	if len(got.body) != 1 || got.body["status"] != "published" {
		t.Fatalf("status update must be partial, got %v", got.body)
	}

	result, err := c.Register(ctx, nil, model.RegisterRequest{EventID: "e", TicketTypeID: "t", AttendeeName: "A", AttendeeEmail: "a@b.co"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.TicketURL != "https://t/1" {
		t.Fatalf("expected ticket url, got %+v", result)
	}
	got = <-calls
	if got.path != "/register" || got.body["ticketTypeId"] != "t" || got.body["attendeeEmail"] != "a@b.co" {
		t.Fatalf("unexpected register call %+v", got)
	}

	if _, err := c.DeleteEvent(ctx, nil, "evt-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got = <-calls
	if got.method != http.MethodDelete || !strings.HasSuffix(got.path, "/events/evt-1") {
		t.Fatalf("unexpected delete call %+v", got)
	}
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	t.Parallel()

	shared := &http.Client{Timeout: 3 * time.Second}
	c := New("http://example.invalid", WithHTTPClient(shared), WithTimeout(time.Second))
	if shared.Timeout != 3*time.Second {
		t.Fatalf("shared client timeout = %v, want it unchanged", shared.Timeout)
	}
	if c.http == shared || c.http.Timeout != time.Second {
		t.Fatalf("client timeout = %v, want its own copy with 1s", c.http.Timeout)
	}
}
