package inventory

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
)

func rawType(id, price, capacity, sold string) model.RawTicketType {
	tt := model.RawTicketType{ID: id, Name: id}
	if price != "" {
		tt.Price = json.RawMessage(price)
	}
	if capacity != "" {
		tt.Capacity = json.RawMessage(capacity)
	}
	if sold != "" {
		tt.Sold = json.RawMessage(sold)
	}
	return tt
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		ticket        model.RawTicketType
		wantPrice     float64
		wantCapacity  int
		wantSold      int
		wantCoercions int
		wantReason    string
	}{
		{
			name:         "numbers",
			ticket:       rawType("t1", `25.5`, `100`, `10`),
			wantPrice:    25.5,
			wantCapacity: 100,
			wantSold:     10,
		},
		{
			name:         "numeric text",
			ticket:       rawType("t1", `"19.99"`, `"50"`, `"3"`),
			wantPrice:    19.99,
			wantCapacity: 50,
			wantSold:     3,
		},
		{
			name:         "missing sold is zero",
			ticket:       rawType("t1", `"10"`, `5`, ``),
			wantPrice:    10,
			wantCapacity: 5,
		},
		{
			name:         "empty text and null are zero",
			ticket:       rawType("t1", `""`, `null`, `" "`),
			wantCapacity: 0,
		},
		{
			name:          "unparseable price clamps alone",
			ticket:        rawType("t1", `"free"`, `20`, `2`),
			wantCapacity:  20,
			wantSold:      2,
			wantCoercions: 1,
		},
		{
			name:          "NaN text clamps to zero",
			ticket:        rawType("t1", `"12"`, `"NaN"`, `0`),
			wantPrice:     12,
			wantCoercions: 1,
		},
		{
			name:          "negative capacity clamps and sold follows",
			ticket:        rawType("t1", `1`, `-4`, `2`),
			wantPrice:     1,
			wantCoercions: 2,
		},
		{
			name:          "sold over capacity clamps",
			ticket:        rawType("t1", `1`, `3`, `7`),
			wantPrice:     1,
			wantCapacity:  3,
			wantSold:      3,
			wantCoercions: 1,
		},
		{
			name:          "fractional capacity truncates",
			ticket:        rawType("t1", `1`, `"9.7"`, `1`),
			wantPrice:     1,
			wantCapacity:  9,
			wantSold:      1,
			wantCoercions: 1,
		},
		{
			name:          "huge capacity clamps to int32 range",
			ticket:        rawType("t1", `1`, `1e12`, `2`),
			wantPrice:     1,
			wantCapacity:  math.MaxInt32,
			wantSold:      2,
			wantCoercions: 1,
			wantReason:    ReasonOutOfRange,
		},
		{
			name:          "boolean is not a number",
			ticket:        rawType("t1", `true`, `4`, `0`),
			wantCapacity:  4,
			wantCoercions: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			event, coercions := Normalize(model.RawEvent{
				ID:          "evt-1",
				Status:      model.StatusPublished,
				TicketTypes: []model.RawTicketType{tt.ticket},
			})
			if len(event.TicketTypes) != 1 {
				t.Fatalf("expected 1 ticket type, got %d", len(event.TicketTypes))
			}
			got := event.TicketTypes[0]
			if got.Price != tt.wantPrice {
				t.Fatalf("expected price %v, got %v", tt.wantPrice, got.Price)
			}
			if got.Capacity != tt.wantCapacity {
				t.Fatalf("expected capacity %d, got %d", tt.wantCapacity, got.Capacity)
			}
			if got.Sold != tt.wantSold {
				t.Fatalf("expected sold %d, got %d", tt.wantSold, got.Sold)
			}
			if len(coercions) != tt.wantCoercions {
				t.Fatalf("expected %d coercions, got %d: %v", tt.wantCoercions, len(coercions), coercions)
			}
			if tt.wantReason != "" && coercions[len(coercions)-1].Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, coercions[len(coercions)-1].Reason)
			}
			if got.Sold > got.Capacity {
				t.Fatalf("sold %d exceeds capacity %d", got.Sold, got.Capacity)
			}
		})
	}
}

func TestNormalizeDefaultsStatusToDraft(t *testing.T) {
	t.Parallel()

	event, _ := Normalize(model.RawEvent{ID: "evt-1"})
	if event.Status != model.StatusDraft {
		t.Fatalf("expected draft status, got %q", event.Status)
	}
}

func TestAggregateNeverOversold(t *testing.T) {
	t.Parallel()

	payload := `[
		{"id":"a","ticketTypes":[{"id":"1","price":"5","capacity":"10","sold":"4"},{"id":"2","price":8,"capacity":3,"sold":9}]},
		{"id":"b","ticketTypes":[{"id":"1","price":"x","capacity":"oops","sold":"2"}]},
		{"id":"c","ticketTypes":[]}
	]`
	var raw []model.RawEvent
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	events, _ := NormalizeAll(raw)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for _, e := range events {
		totals := Aggregate(e)
		if totals.Sold > totals.Capacity {
			t.Fatalf("event %s: sold %d exceeds capacity %d", e.ID, totals.Sold, totals.Capacity)
		}
		if totals.Remaining != totals.Capacity-totals.Sold {
			t.Fatalf("event %s: remaining %d inconsistent", e.ID, totals.Remaining)
		}
	}

	totals := Aggregate(events[0])
	if totals.Capacity != 13 || totals.Sold != 7 || totals.Remaining != 6 {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestIsSoldOut(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		types []model.TicketType
		want  bool
	}{
		{
			name:  "demo event fully sold",
			types: []model.TicketType{{ID: "std", Capacity: 2, Sold: 2}},
			want:  true,
		},
		{
			name: "one sibling still open",
			types: []model.TicketType{
				{ID: "vip", Capacity: 5, Sold: 5},
				{ID: "std", Capacity: 10, Sold: 9},
			},
			want: false,
		},
		{
			name: "every type sold out",
			types: []model.TicketType{
				{ID: "vip", Capacity: 5, Sold: 5},
				{ID: "std", Capacity: 0, Sold: 0},
			},
			want: true,
		},
		{
			name:  "nothing sold",
			types: []model.TicketType{{ID: "std", Capacity: 1}},
			want:  false,
		},
		{
			name: "no ticket types",
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			event := model.Event{Name: "Demo", TicketTypes: tt.types}
			if got := IsSoldOut(event); got != tt.want {
				t.Fatalf("expected sold out %v, got %v", tt.want, got)
			}

			every := true
			for _, ticket := range tt.types {
				if Available(ticket) {
					every = false
				}
			}
			if every != IsSoldOut(event) {
				t.Fatalf("sold out must hold iff every ticket type is sold out")
			}
		})
	}
}

func TestTicketOptions(t *testing.T) {
	t.Parallel()

	event := model.Event{TicketTypes: []model.TicketType{
		{ID: "vip", Name: "VIP", Price: 120, Capacity: 2, Sold: 2},
		{ID: "std", Name: "Standard", Price: 19.5, Capacity: 10, Sold: 7},
	}}

	options := TicketOptions(event)
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(options))
	}
	if !options[0].Disabled || options[0].Label != "VIP - $120.00 (Sold Out)" {
		t.Fatalf("unexpected sold out option %+v", options[0])
	}
	if options[1].Disabled || options[1].Label != "Standard - $19.50 (3 left)" {
		t.Fatalf("unexpected open option %+v", options[1])
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	events := []model.Event{
		{ID: "1", Name: "Tech Innovators Summit", Location: "Convention Center"},
		{ID: "2", Name: "Jazz Night", Location: "Virtual", Description: "Smooth tunes"},
	}

	if got := Search(events, ""); len(got) != 2 {
		t.Fatalf("empty term should match all, got %d", len(got))
	}
	if got := Search(events, "VIRTUAL"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected location match, got %+v", got)
	}
	if got := Search(events, "tunes"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected description match, got %+v", got)
	}
	if got := Search(events, "opera"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	original := `{"id":"evt-1","name":"Demo","status":"published","ticketTypes":[
		{"id":"tkt-1","name":"Standard","price":"19.9","capacity":100,"sold":12},
		{"id":"tkt-2","name":"VIP","price":"250","capacity":"5","sold":"0"}
	]}`
	var raw model.RawEvent
	if err := json.Unmarshal([]byte(original), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	event, coercions := Normalize(raw)
	if len(coercions) != 0 {
		t.Fatalf("expected clean normalization, got %v", coercions)
	}
	payload := Payload(event)

	want := []model.TicketTypePayload{
		{ID: "tkt-1", Name: "Standard", Price: "19.9", Capacity: 100, Sold: 12},
		{ID: "tkt-2", Name: "VIP", Price: "250", Capacity: 5, Sold: 0},
	}
	if len(payload.TicketTypes) != len(want) {
		t.Fatalf("expected %d ticket types, got %d", len(want), len(payload.TicketTypes))
	}
	for i, w := range want {
		if payload.TicketTypes[i] != w {
			t.Fatalf("ticket type %d: expected %+v, got %+v", i, w, payload.TicketTypes[i])
		}
	}
}

func TestParseFormValues(t *testing.T) {
	t.Parallel()

	if v, err := ParsePrice(" 12.50 "); err != nil || v != 12.5 {
		t.Fatalf("expected 12.5, got %v (%v)", v, err)
	}
	if _, err := ParsePrice("-1"); err == nil {
		t.Fatalf("expected negative price to be rejected")
	}
	if v, err := ParseCount(""); err != nil || v != 0 {
		t.Fatalf("expected empty count to be zero, got %v (%v)", v, err)
	}
	if _, err := ParseCount("2.5"); err == nil {
		t.Fatalf("expected fractional count to be rejected")
	}
	if _, err := ParseCount("lots"); err == nil {
		t.Fatalf("expected unparseable count to be rejected")
	}
}
