package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
	"github.com/vsinha/kitchenplan/pkg/domain/repositories"
)

// EventRepository provides in-memory event storage
type EventRepository struct {
	mutex     sync.RWMutex
	events    []entities.Event
	eventsMap map[string]int
	deleted   map[string]bool
}

// NewEventRepository creates a new in-memory event repository
func NewEventRepository(expectedEvents int) *EventRepository {
	return &EventRepository{
		events:    make([]entities.Event, 0, expectedEvents),
		eventsMap: make(map[string]int, expectedEvents),
		deleted:   make(map[string]bool),
	}
}

// Verify interface compliance
var _ repositories.EventRepository = (*EventRepository)(nil)

// LoadEvents loads events into the repository
func (r *EventRepository) LoadEvents(events []*entities.Event) error {
	for _, event := range events {
		r.AddEvent(*event)
	}
	return nil
}

// AddEvent adds or replaces an event
func (r *EventRepository) AddEvent(event entities.Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if index, exists := r.eventsMap[event.ID]; exists {
		r.events[index] = event
		return
	}
	r.eventsMap[event.ID] = len(r.events)
	r.events = append(r.events, event)
}

// SoftDelete hides an event from GetEvent without removing it
func (r *EventRepository) SoftDelete(eventID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.deleted[eventID] = true
}

// GetEvent returns an event owned by the organization
func (r *EventRepository) GetEvent(ctx context.Context, eventID, organizationID string) (*entities.Event, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	index, exists := r.eventsMap[eventID]
	if !exists || r.deleted[eventID] || r.events[index].OrganizationID != organizationID {
		return nil, fmt.Errorf("event %s: %w", eventID, repositories.ErrNotFound)
	}

	event := r.events[index]
	event.MenuLines = append([]entities.MenuLine(nil), event.MenuLines...)
	event.DirectIngredientLines = append([]entities.DirectIngredientLine(nil), event.DirectIngredientLines...)
	return &event, nil
}
