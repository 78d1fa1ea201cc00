package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday is an ISO-8601 weekday number, 1=Monday through 7=Sunday
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf converts a time's weekday to ISO numbering
func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// Valid reports whether w is within 1..7
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// IsWeekend reports whether w is Saturday or Sunday
func (w Weekday) IsWeekend() bool {
	return w == Saturday || w == Sunday
}

// String method for Weekday enum
func (w Weekday) String() string {
	if !w.Valid() {
		return "Unknown"
	}
	if w == Sunday {
		return time.Sunday.String()
	}
	return time.Weekday(w).String()
}

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM or HH:MM:SS", s)
	}

	values := make([]int, 3)
	limits := []int{23, 59, 59}
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
		if v < 0 || v > limits[i] {
			return TimeOfDay{}, fmt.Errorf("invalid time of day %q: component %d out of range", s, v)
		}
		values[i] = v
	}

	return TimeOfDay{Hour: values[0], Minute: values[1], Second: values[2]}, nil
}

// On returns the instant at this time of day on t's calendar date, in t's location
func (tod TimeOfDay) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, tod.Second, 0, t.Location())
}

// Seconds returns the offset from midnight in seconds
func (tod TimeOfDay) Seconds() int {
	return tod.Hour*3600 + tod.Minute*60 + tod.Second
}

// String formats as HH:MM:SS
func (tod TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", tod.Hour, tod.Minute, tod.Second)
}

// Supplier represents an ingredient supplier and its delivery constraints
type Supplier struct {
	ID           string
	Name         string
	LeadTimeDays int // counted in business days
	// CutOffTime is nil when the supplier accepts orders all day
	CutOffTime   *TimeOfDay
	DeliveryDays []Weekday
	// Timezone is an IANA location name; empty means the planner's default
	Timezone string
}

// NewSupplier creates a validated Supplier
func NewSupplier(id, name string, leadTimeDays int, cutOffTime *TimeOfDay, deliveryDays []Weekday) (*Supplier, error) {
	if id == "" {
		return nil, fmt.Errorf("supplier id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("supplier name cannot be empty")
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %d", leadTimeDays)
	}
	if len(deliveryDays) == 0 {
		return nil, fmt.Errorf("delivery days cannot be empty")
	}
	for _, day := range deliveryDays {
		if !day.Valid() {
			return nil, fmt.Errorf("delivery day must be between 1 and 7, got %d", day)
		}
	}

	return &Supplier{
		ID:           id,
		Name:         name,
		LeadTimeDays: leadTimeDays,
		CutOffTime:   cutOffTime,
		DeliveryDays: deliveryDays,
	}, nil
}

// AllWeekdays returns Monday through Sunday
func AllWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}
