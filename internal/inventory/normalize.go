// Package inventory reconciles event and ticket inventory as fetched from
// the backend into typed, invariant-checked values, and derives the
// capacity figures shown to organizers and attendees.
//
// Every function here is pure. Callers recompute on each render instead of
// caching: a single event rarely carries more than a handful of ticket types.
package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

// Field names reported in a Coercion.
const (
	FieldPrice    = "price"
	FieldCapacity = "capacity"
	FieldSold     = "sold"
)

// Reasons a numeric field was coerced.
const (
	ReasonUnparseable = "unparseable"
	ReasonNotFinite   = "not finite"
	ReasonNegative    = "negative"
	ReasonFractional  = "fractional"
	ReasonSoldOverCap = "sold exceeds capacity"
	ReasonNotANumber  = "not a number"
	ReasonOutOfRange  = "out of range"
	reasonNone        = ""
)

// Coercion records a numeric field that did not arrive in clean form and
// the value it was clamped to. A bad field never invalidates its event.
type Coercion struct {
	EventID      string
	TicketTypeID string
	Field        string
	Raw          string
	Value        float64
	Reason       string
}

func (c Coercion) String() string {
	return fmt.Sprintf("event %s ticket type %s: %s %q %s, using %s",
		c.EventID, c.TicketTypeID, c.Field, c.Raw, c.Reason, FormatPrice(c.Value))
}

// Normalize coerces every ticket type's price, capacity and sold to numeric
// form. It is total: unparseable, non-finite or negative values clamp to
// zero per field and counts above MaxInt32 clamp to it. Fractional counts
// truncate. Sold is clamped to capacity so that sold <= capacity holds for
// every returned ticket type.
func Normalize(raw model.RawEvent) (model.Event, []Coercion) {
	event := model.Event{
		ID:          raw.ID,
		OrganizerID: raw.OrganizerID,
		Name:        raw.Name,
		Date:        raw.Date,
		Time:        raw.Time,
		Location:    raw.Location,
		Description: raw.Description,
		Status:      raw.Status,
		TicketTypes: make([]model.TicketType, 0, len(raw.TicketTypes)),
	}
	if event.Status == "" {
		event.Status = model.StatusDraft
	}

	var coercions []Coercion
	note := func(tt model.RawTicketType, field string, rawValue json.RawMessage, value float64, reason string) {
		coercions = append(coercions, Coercion{
			EventID:      raw.ID,
			TicketTypeID: tt.ID,
			Field:        field,
			Raw:          string(rawValue),
			Value:        value,
			Reason:       reason,
		})
	}

	for _, rawType := range raw.TicketTypes {
		price, reason := coerce(rawType.Price)
		if reason != reasonNone {
			note(rawType, FieldPrice, rawType.Price, price, reason)
		}

		capacity, reason := coerceCount(rawType.Capacity)
		if reason != reasonNone {
			note(rawType, FieldCapacity, rawType.Capacity, float64(capacity), reason)
		}

		sold, reason := coerceCount(rawType.Sold)
		if reason != reasonNone {
			note(rawType, FieldSold, rawType.Sold, float64(sold), reason)
		}
		if sold > capacity {
			note(rawType, FieldSold, rawType.Sold, float64(capacity), ReasonSoldOverCap)
			sold = capacity
		}

		event.TicketTypes = append(event.TicketTypes, model.TicketType{
			ID:       rawType.ID,
			Name:     rawType.Name,
			Price:    price,
			Capacity: capacity,
			Sold:     sold,
		})
	}
	return event, coercions
}

// NormalizeAll normalizes a fetched event list, preserving order.
func NormalizeAll(raw []model.RawEvent) ([]model.Event, []Coercion) {
	events := make([]model.Event, 0, len(raw))
	var coercions []Coercion
	for _, r := range raw {
		event, c := Normalize(r)
		events = append(events, event)
		coercions = append(coercions, c...)
	}
	return events, coercions
}

// ParsePrice parses a price typed into an edit form. Empty text is zero.
func ParsePrice(text string) (float64, error) {
	v, reason := coerceText(text)
	if reason != reasonNone {
		return 0, fmt.Errorf("price %q: %s", text, reason)
	}
	return v, nil
}

// ParseCount parses a capacity or sold figure typed into an edit form.
// Empty text is zero; fractional and negative values are rejected.
func ParseCount(text string) (int, error) {
	v, reason := coerceText(text)
	if reason == reasonNone && v != math.Trunc(v) {
		reason = ReasonFractional
	}
	if reason != reasonNone {
		return 0, fmt.Errorf("count %q: %s", text, reason)
	}
	return int(v), nil
}

// FormatPrice renders a price in its shortest decimal form, which is the
// text representation the backend stores.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func coerce(raw json.RawMessage) (float64, string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, reasonNone
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, ReasonUnparseable
		}
		return coerceText(text)
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, ReasonNotANumber
	}
	return clamp(v)
}

func coerceCount(raw json.RawMessage) (int, string) {
	v, reason := coerce(raw)
	if reason == reasonNone && v != math.Trunc(v) {
		reason = ReasonFractional
	}
	if v > math.MaxInt32 {
		v, reason = math.MaxInt32, ReasonOutOfRange
	}
	return int(math.Trunc(v)), reason
}

func coerceText(text string) (float64, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, reasonNone
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, ReasonUnparseable
	}
	return clamp(v)
}

func clamp(v float64) (float64, string) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, ReasonNotFinite
	case v < 0:
		return 0, ReasonNegative
	}
	return v, reasonNone
}
