package inventory

import (
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

// Totals are the capacity figures aggregated over an event's ticket types.
type Totals struct {
	Capacity  int
	Sold      int
	Remaining int
}

// Aggregate sums capacity and sold over every ticket type of the event.
func Aggregate(event model.Event) Totals {
	var t Totals
	for _, tt := range event.TicketTypes {
		t.Capacity += tt.Capacity
		t.Sold += tt.Sold
	}
	t.Remaining = t.Capacity - t.Sold
	return t
}

// Remaining returns the units still sellable for one ticket type.
func Remaining(tt model.TicketType) int {
	if r := tt.Capacity - tt.Sold; r > 0 {
		return r
	}
	return 0
}

// Available reports whether a ticket type can still be selected.
func Available(tt model.TicketType) bool {
	return tt.Sold < tt.Capacity
}

// IsSoldOut reports whether the sum of per-type (capacity - sold) is
// exhausted. An event with no ticket types is sold out.
func IsSoldOut(event model.Event) bool {
	remaining := 0
	for _, tt := range event.TicketTypes {
		remaining += tt.Capacity - tt.Sold
	}
	return remaining <= 0
}

// FindTicketType looks up a ticket type of the event by id.
func FindTicketType(event model.Event, id string) (model.TicketType, bool) {
	for _, tt := range event.TicketTypes {
		if tt.ID == id {
			return tt, true
		}
	}
	return model.TicketType{}, false
}

// Option is one entry of the ticket type selector shown to attendees.
type Option struct {
	ID        string
	Label     string
	Remaining int
	Disabled  bool
}

// TicketOptions lists the selectable ticket types of an event in display
// order. Sold-out types stay listed but disabled; siblings with remaining
// capacity stay selectable.
func TicketOptions(event model.Event) []Option {
	options := make([]Option, 0, len(event.TicketTypes))
	for _, tt := range event.TicketTypes {
		remaining := Remaining(tt)
		label := fmt.Sprintf("%s - $%.2f", tt.Name, tt.Price)
		if Available(tt) {
			label += fmt.Sprintf(" (%d left)", remaining)
		} else {
			label += " (Sold Out)"
		}
		options = append(options, Option{
			ID:        tt.ID,
			Label:     label,
			Remaining: remaining,
			Disabled:  !Available(tt),
		})
	}
	return options
}

// Search filters events whose name, location or description contains term,
// ignoring case. An empty term matches everything.
func Search(events []model.Event, term string) []model.Event {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return events
	}
	var matched []model.Event
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strings.ToLower(e.Location), term) ||
			strings.Contains(strings.ToLower(e.Description), term) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Payload converts an event into its submission form: price as text,
// capacity and sold as integers.
func Payload(event model.Event) model.EventPayload {
	payload := model.EventPayload{
		Name:        event.Name,
		Date:        event.Date,
		Time:        event.Time,
		Location:    event.Location,
		Description: event.Description,
		Status:      event.Status,
		TicketTypes: make([]model.TicketTypePayload, 0, len(event.TicketTypes)),
	}
	for _, tt := range event.TicketTypes {
		payload.TicketTypes = append(payload.TicketTypes, model.TicketTypePayload{
			ID:       tt.ID,
			Name:     tt.Name,
			Price:    FormatPrice(tt.Price),
			Capacity: tt.Capacity,
			Sold:     tt.Sold,
		})
	}
	return payload
}
