// Package handler contains the chi HTTP handlers of the local API stub.
// They speak the same wire format as the production backend so the
// client can be developed and tested against them.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/eventmaster/internal/inventory"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/repository"
)

// EventHandler holds all HTTP handlers of the stub API.
type EventHandler struct {
	events     *repository.EventRepository
	regs       *repository.RegistrationRepository
	logger     *slog.Logger
	ticketBase string
}

// NewEventHandler constructs an EventHandler. Registrations get a ticket
// URL under ticketBase; an empty ticketBase issues none.
func NewEventHandler(events *repository.EventRepository, regs *repository.RegistrationRepository, logger *slog.Logger, ticketBase string) *EventHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EventHandler{
		events:     events,
		regs:       regs,
		logger:     logger,
		ticketBase: strings.TrimRight(ticketBase, "/"),
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeRepoError maps store errors to status codes and messages.
func (h *EventHandler) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, repository.ErrForbidden):
		writeError(w, http.StatusForbidden, "You can only manage your own events")
	case errors.Is(err, repository.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// requireOrganizer writes 403 and reports false for non-organizers.
func requireOrganizer(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := claimsFrom(r.Context())
	if claims.Role() != model.RoleOrganizer {
		writeError(w, http.StatusForbidden, "Only organizers can manage events")
		return "", false
	}
	return claims.Subject, true
}

// wireEvent renders an event the way the backend stores it: prices as
// decimal strings, counts as numbers.
func wireEvent(e model.Event) model.RawEvent {
	raw := model.RawEvent{
		ID:          e.ID,
		OrganizerID: e.OrganizerID,
		Name:        e.Name,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Description: e.Description,
		Status:      e.Status,
		TicketTypes: make([]model.RawTicketType, 0, len(e.TicketTypes)),
	}
	for _, tt := range e.TicketTypes {
		raw.TicketTypes = append(raw.TicketTypes, model.RawTicketType{
			ID:       tt.ID,
			Name:     tt.Name,
			Price:    json.RawMessage(strconv.Quote(inventory.FormatPrice(tt.Price))),
			Capacity: json.RawMessage(strconv.Itoa(tt.Capacity)),
			Sold:     json.RawMessage(strconv.Itoa(tt.Sold)),
		})
	}
	return raw
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListEvents handles GET /events
// Organizers get their own events; everyone else gets published ones.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var (
		events []model.Event
		err    error
	)
	if claims.Role() == model.RoleOrganizer {
		events, err = h.events.ListByOrganizer(r.Context(), claims.Subject)
	} else {
		events, err = h.events.ListPublished(r.Context())
	}
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	out := make([]model.RawEvent, 0, len(events))
	for _, e := range events {
		out = append(out, wireEvent(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireOrganizer(w, r)
	if !ok {
		return
	}

	var req model.EventPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.Create(r.Context(), organizerID, req)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.logger.Info("event created", "event", event.ID, "organizer", organizerID)
	writeJSON(w, http.StatusCreated, model.MutationResult{Message: "Event created successfully", ID: event.ID})
}

// UpdateEvent handles PUT /events/{id}
// A body carrying only "status" is a status change; anything else replaces
// the event.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var fields map[string]json.RawMessage
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if status, ok := fields["status"]; ok && len(fields) == 1 {
		var s model.Status
		if err := json.Unmarshal(status, &s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		if err := h.events.UpdateStatus(r.Context(), organizerID, id, s); err != nil {
			h.writeRepoError(w, err)
			return
		}
		h.logger.Info("event status updated", "event", id, "status", s)
		writeJSON(w, http.StatusOK, model.MutationResult{Message: "Event status updated", ID: id})
		return
	}

	var req model.EventPayload
	body, _ := json.Marshal(fields)
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if _, err := h.events.Update(r.Context(), organizerID, id, req); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.logger.Info("event updated", "event", id)
	writeJSON(w, http.StatusOK, model.MutationResult{Message: "Event updated successfully", ID: id})
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.events.Delete(r.Context(), organizerID, id); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.logger.Info("event deleted", "event", id)
	writeJSON(w, http.StatusOK, model.MutationResult{Message: "Event deleted successfully", ID: id})
}

// Register handles POST /register
// Performs a concurrency-safe registration. Payment is mocked.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.AttendeeName = strings.TrimSpace(req.AttendeeName)
	req.AttendeeEmail = strings.TrimSpace(req.AttendeeEmail)
	if req.EventID == "" || req.TicketTypeID == "" || req.AttendeeName == "" || req.AttendeeEmail == "" {
		writeError(w, http.StatusBadRequest, "eventId, ticketTypeId, attendeeName and attendeeEmail are required")
		return
	}

	reg, err := h.regs.Book(r.Context(), claims.Subject, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
		case errors.Is(err, repository.ErrTicketTypeNotFound):
			writeError(w, http.StatusNotFound, "Ticket type not found")
		case errors.Is(err, repository.ErrEventFull):
			writeError(w, http.StatusConflict, "Sold out")
		case errors.Is(err, repository.ErrAlreadyRegistered):
			writeError(w, http.StatusConflict, "You are already registered for this event")
		default:
			h.writeRepoError(w, err)
		}
		return
	}

	result := model.RegisterResult{Message: "Registration successful", RegistrationID: reg.RegistrationID}
	if h.ticketBase != "" {
		result.TicketURL = fmt.Sprintf("%s/tickets/%s.pdf", h.ticketBase, reg.RegistrationID)
		if err := h.regs.SetTicketURL(r.Context(), reg.RegistrationID, result.TicketURL); err != nil {
			h.logger.Warn("ticket url not recorded", "registration", reg.RegistrationID, "error", err)
		}
	}
	h.logger.Info("registered", "event", reg.EventID, "ticket_type", reg.TicketTypeID, "registration", reg.RegistrationID)
	writeJSON(w, http.StatusCreated, result)
}

// MyRegistrations handles GET /registrations/me
func (h *EventHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	regs, err := h.regs.ListByUser(r.Context(), claims.Subject)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// ListRegistrations handles GET /events/{id}/registrations
func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	regs, err := h.regs.ListByEvent(r.Context(), organizerID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// ValidateTicket handles POST /tickets/validate
// A ticket is admitted once; later validations report it as used.
func (h *EventHandler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	var req model.ValidateTicketRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.TicketID) == "" {
		writeError(w, http.StatusBadRequest, "ticketId is required")
		return
	}

	reg, err := h.regs.CheckIn(r.Context(), organizerID, strings.TrimSpace(req.TicketID))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, model.ValidateTicketResult{Valid: true, Message: "Ticket is valid", Registration: reg})
	case errors.Is(err, repository.ErrAlreadyCheckedIn):
		writeJSON(w, http.StatusOK, model.ValidateTicketResult{Valid: false, Message: "Ticket already used", Registration: reg})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusOK, model.ValidateTicketResult{Valid: false, Message: "Ticket not found"})
	default:
		h.writeRepoError(w, err)
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
