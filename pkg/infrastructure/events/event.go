package events

import (
	"time"
)

// Event is a fact recorded by the procurement pipeline. Facts are kept in one stream
// per kitchen event.
type Event struct {
	Type       string
	EventID    string
	Payload    any
	OccurredAt time.Time
	// Sequence is the 1-based position within the stream, assigned on publish
	Sequence int
}

// New stamps a fact for the given kitchen event with the current time
func New(eventType, eventID string, payload any) Event {
	return Event{
		Type:       eventType,
		EventID:    eventID,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}

type Handler interface {
	Handle(Event) error
}

// HandlerFunc adapts a plain function to Handler
type HandlerFunc func(Event) error

func (f HandlerFunc) Handle(e Event) error {
	return f(e)
}

// Publisher is the write side used by services
type Publisher interface {
	Publish(Event) error
}
