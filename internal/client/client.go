// Package client calls the ticketing API Gateway stage.
//
// Every call takes the caller's *session.Session explicitly. A nil or
// signed-out session sends the call unauthenticated and leaves rejection
// to the backend; an expired session fails before anything is sent.
// Mutations return only the backend's acknowledgement; callers re-issue
// the corresponding list query to learn the resulting state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

const maxBodyBytes = 1 << 20

// Client is an API Gateway client.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *slog.Logger
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the HTTP client's own timeout. Zero disables it. The
// client is copied first so a shared *http.Client is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New constructs a Client for the stage at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		logger:    slog.New(slog.DiscardHandler),
		userAgent: "eventmaster",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListEvents handles GET /events. The backend scopes the list by the
// caller's identity: organizers get their own events, attendees get
// published ones.
func (c *Client) ListEvents(ctx context.Context, sess *session.Session) ([]model.RawEvent, error) {
	var events []model.RawEvent
	if err := c.do(ctx, sess, http.MethodGet, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent handles POST /events.
func (c *Client) CreateEvent(ctx context.Context, sess *session.Session, payload model.EventPayload) (model.MutationResult, error) {
	var result model.MutationResult
	err := c.do(ctx, sess, http.MethodPost, "/events", payload, &result)
	return result, err
}

// UpdateEvent handles PUT /events/{id} with a full payload.
func (c *Client) UpdateEvent(ctx context.Context, sess *session.Session, id string, payload model.EventPayload) (model.MutationResult, error) {
	var result model.MutationResult
	err := c.do(ctx, sess, http.MethodPut, "/events/"+url.PathEscape(id), payload, &result)
	return result, err
}

// UpdateEventStatus handles PUT /events/{id} with a status-only payload.
func (c *Client) UpdateEventStatus(ctx context.Context, sess *session.Session, id string, status model.Status) (model.MutationResult, error) {
	var result model.MutationResult
	err := c.do(ctx, sess, http.MethodPut, "/events/"+url.PathEscape(id), model.StatusUpdate{Status: status}, &result)
	return result, err
}

// DeleteEvent handles DELETE /events/{id}.
func (c *Client) DeleteEvent(ctx context.Context, sess *session.Session, id string) (model.MutationResult, error) {
	var result model.MutationResult
	err := c.do(ctx, sess, http.MethodDelete, "/events/"+url.PathEscape(id), nil, &result)
	return result, err
}

// Register handles POST /register.
func (c *Client) Register(ctx context.Context, sess *session.Session, req model.RegisterRequest) (model.RegisterResult, error) {
	var result model.RegisterResult
	err := c.do(ctx, sess, http.MethodPost, "/register", req, &result)
	return result, err
}

// MyRegistrations handles GET /registrations/me.
func (c *Client) MyRegistrations(ctx context.Context, sess *session.Session) ([]model.Registration, error) {
	var regs []model.Registration
	if err := c.do(ctx, sess, http.MethodGet, "/registrations/me", nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// EventRegistrations handles GET /events/{id}/registrations.
func (c *Client) EventRegistrations(ctx context.Context, sess *session.Session, eventID string) ([]model.Registration, error) {
	var regs []model.Registration
	if err := c.do(ctx, sess, http.MethodGet, "/events/"+url.PathEscape(eventID)+"/registrations", nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// ValidateTicket handles POST /tickets/validate.
func (c *Client) ValidateTicket(ctx context.Context, sess *session.Session, ticketID string) (model.ValidateTicketResult, error) {
	var result model.ValidateTicketResult
	err := c.do(ctx, sess, http.MethodPost, "/tickets/validate", model.ValidateTicketRequest{TicketID: ticketID}, &result)
	return result, err
}

func (c *Client) do(ctx context.Context, sess *session.Session, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	bearer, err := sess.Bearer()
	switch {
	case err == nil:
		req.Header.Set("Authorization", "Bearer "+bearer)
	case errors.Is(err, session.ErrNoSession):
		// Sent unauthenticated; the backend decides.
	default:
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api call failed", "method", method, "path", path, "error", err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	c.logger.Debug("api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromBody(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func errorFromBody(status int, data []byte) *APIError {
	var body model.ErrorResponse
	msg := GenericErrorMessage
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		msg = body.Message
	}
	return &APIError{StatusCode: status, Message: msg}
}
