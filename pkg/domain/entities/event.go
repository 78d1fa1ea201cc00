package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EventType represents the kind of kitchen event being planned
type EventType string

const (
	EventBanquet     EventType = "BANQUET"
	EventALaCarte    EventType = "A_LA_CARTE"
	EventSportsMulti EventType = "SPORTS_MULTI"
	EventCoffee      EventType = "COFFEE"
	EventBuffet      EventType = "BUFFET"
	EventOther       EventType = "OTHER"
)

// DemandMode selects how menu lines are turned into ingredient quantities
type DemandMode int

const (
	// HeadcountDriven scales each recipe by the event's pax
	HeadcountDriven DemandMode = iota
	// ForecastDriven scales each recipe by the menu line's forecast quantity
	ForecastDriven
)

// String method for DemandMode enum
func (m DemandMode) String() string {
	switch m {
	case HeadcountDriven:
		return "HeadcountDriven"
	case ForecastDriven:
		return "ForecastDriven"
	default:
		return "Unknown"
	}
}

// DemandMode returns the demand mode for the event type.
// Unknown types fall back to the headcount-driven path.
func (t EventType) DemandMode() DemandMode {
	switch t {
	case EventALaCarte:
		return ForecastDriven
	case EventBanquet, EventSportsMulti, EventCoffee, EventBuffet, EventOther:
		return HeadcountDriven
	default:
		return HeadcountDriven
	}
}

// NormalizeEventType trims and upper-cases a stored event type. Unknown types are
// kept as-is; DemandMode treats them as headcount-driven.
func NormalizeEventType(s string) EventType {
	return EventType(strings.ToUpper(strings.TrimSpace(s)))
}

// MenuLine references a recipe served at an event
type MenuLine struct {
	RecipeID string
	// ForecastQty is the expected number of portions; nil when no forecast was entered
	ForecastQty *decimal.Decimal
}

// DirectIngredientLine is an ingredient requested for an event without a recipe
type DirectIngredientLine struct {
	IngredientID string
	Quantity     decimal.Decimal
	UnitID       string
}

// Event represents a scheduled event with its menu
type Event struct {
	ID                    string
	OrganizationID        string
	Name                  string
	Type                  EventType
	Pax                   int
	MenuLines             []MenuLine
	DirectIngredientLines []DirectIngredientLine
}

// NewEvent creates a validated Event
func NewEvent(id, organizationID string, eventType EventType, pax int) (*Event, error) {
	if id == "" {
		return nil, fmt.Errorf("event id cannot be empty")
	}
	if organizationID == "" {
		return nil, fmt.Errorf("organization id cannot be empty")
	}
	if pax < 0 {
		return nil, fmt.Errorf("pax cannot be negative, got %d", pax)
	}

	return &Event{
		ID:             id,
		OrganizationID: organizationID,
		Type:           eventType,
		Pax:            pax,
	}, nil
}
