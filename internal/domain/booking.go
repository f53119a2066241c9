package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// EventType identifies the booking category and decides which pricing branches are active.
type EventType string

const (
	EventTypeWedding EventType = "wedding"
	EventTypeEvent   EventType = "event"
	EventTypePhoto   EventType = "photo"
)

// Valid reports whether the event type belongs to the closed set.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeWedding, EventTypeEvent, EventTypePhoto:
		return true
	}
	return false
}

// ParseEventType normalises free-form input into an EventType.
func ParseEventType(raw string) (EventType, bool) {
	t := EventType(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// DayType distinguishes weekday from weekend bookings.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
)

// Valid reports whether the day type is known.
func (d DayType) Valid() bool {
	return d == DayTypeWeekday || d == DayTypeWeekend
}

// BudgetTier is a catalog-defined wedding budget bracket.
type BudgetTier string

// Canonical period identifiers. Only the full-day id is matched by the flat surcharge rule.
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
	PeriodFullDay   = "full_day"
)

// SelectedAddon is one entry of the customer's add-on selection. Amount is signed: positive
// values are charges, negative values are promotional discounts.
type SelectedAddon struct {
	Amount    int64 `json:"amount"`
	Quantity  int   `json:"quantity,omitempty"`
	Malformed bool  `json:"-"`
}

type selectedAddonWire struct {
	Amount   json.RawMessage `json:"amount"`
	Quantity int             `json:"quantity,omitempty"`
}

// UnmarshalJSON accepts numeric amounts encoded as numbers or strings. Anything that does not
// parse is coerced to zero and flagged as malformed instead of failing the whole request.
func (s *SelectedAddon) UnmarshalJSON(data []byte) error {
	var wire selectedAddonWire
	if err := json.Unmarshal(data, &wire); err != nil {
		amount, ok := ParseAmount(data)
		*s = SelectedAddon{Amount: amount, Malformed: !ok}
		return nil
	}
	amount, ok := ParseAmount(wire.Amount)
	*s = SelectedAddon{Amount: amount, Quantity: wire.Quantity, Malformed: !ok}
	return nil
}

// ParseAmount converts a raw JSON value into whole currency units. Fractions are rounded half
// up. The boolean is false when the value was present but not numeric or does not fit in int64.
func ParseAmount(raw json.RawMessage) (int64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, true
	}
	text := string(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, false
		}
		text = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if text == "" {
			return 0, true
		}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}
	rounded := d.Add(decimal.New(5, -1)).Floor()
	if !rounded.BigInt().IsInt64() {
		return 0, false
	}
	return rounded.IntPart(), true
}

// AddonSelection maps add-on ids to the selected signed amount.
type AddonSelection map[string]SelectedAddon

// Normalize returns a copy without zero-amount entries. Malformed entries are kept so the
// engine can report them; their amount is already zero.
func (s AddonSelection) Normalize() AddonSelection {
	out := make(AddonSelection, len(s))
	for id, addon := range s {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if addon.Amount == 0 && !addon.Malformed {
			continue
		}
		out[id] = addon
	}
	return out
}

// BookingRequest is the immutable input to the pricing engine, assembled from wizard state.
type BookingRequest struct {
	EventType  EventType      `json:"eventType"`
	PackageID  string         `json:"packageId"`
	Addons     AddonSelection `json:"addons,omitempty"`
	GuestCount int            `json:"guestCount"`
	DayType    DayType        `json:"dayType"`
	Period     string         `json:"period"`
}
