package events

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

type subscription struct {
	types   map[string]bool // empty matches every type
	handler Handler
}

func (s subscription) matches(eventType string) bool {
	return len(s.types) == 0 || s.types[eventType]
}

// DefaultRetention is how many events a Store keeps unless WithRetention says otherwise
const DefaultRetention = 10000

// Store keeps the most recent published events in memory, one stream per kitchen event,
// and hands each event to matching subscribers on their own goroutine. Once more than
// the retention limit are held, the oldest are dropped.
type Store struct {
	mu        sync.RWMutex
	streams   map[string][]Event
	sequences map[string]int
	history   []Event
	dropped   int // events evicted from the front of history
	retention int
	subs      map[int]subscription
	nextSub   int

	pending sync.WaitGroup
	log     logrus.FieldLogger
}

type StoreOption func(*Store)

// WithRetention caps the number of events held; values below 1 are ignored
func WithRetention(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.retention = n
		}
	}
}

func NewStore(log logrus.FieldLogger, opts ...StoreOption) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		streams:   make(map[string][]Event),
		sequences: make(map[string]int),
		retention: DefaultRetention,
		subs:      make(map[int]subscription),
		log:       log.WithField("component", "event_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Publisher = (*Store)(nil)

// Publish appends e to its kitchen event's stream, assigning its sequence
func (s *Store) Publish(e Event) error {
	if e.Type == "" || e.EventID == "" {
		return fmt.Errorf("event needs a type and a kitchen event id, got %q/%q", e.Type, e.EventID)
	}

	s.mu.Lock()
	s.sequences[e.EventID]++
	e.Sequence = s.sequences[e.EventID]
	s.streams[e.EventID] = append(s.streams[e.EventID], e)
	s.history = append(s.history, e)
	s.evict()

	var handlers []Handler
	for _, sub := range s.subs {
		if sub.matches(e.Type) {
			handlers = append(handlers, sub.handler)
		}
	}
	s.mu.Unlock()

	for _, h := range handlers {
		s.pending.Add(1)
		go s.dispatch(h, e)
	}
	return nil
}

// evict drops the oldest events beyond the retention limit. The oldest event overall is
// also the oldest of its stream. Caller holds mu.
func (s *Store) evict() {
	for len(s.history) > s.retention {
		oldest := s.history[0]
		s.history[0] = Event{}
		s.history = s.history[1:]
		s.dropped++

		stream := s.streams[oldest.EventID][1:]
		if len(stream) == 0 {
			delete(s.streams, oldest.EventID)
			continue
		}
		s.streams[oldest.EventID] = stream
	}
}

func (s *Store) dispatch(h Handler, e Event) {
	defer s.pending.Done()
	if err := h.Handle(e); err != nil {
		s.log.WithFields(logrus.Fields{
			"event_type": e.Type,
			"event_id":   e.EventID,
		}).WithError(err).Error("event handler failed")
	}
}

// Stream returns a copy of the events recorded for a kitchen event, oldest first
func (s *Store) Stream(eventID string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.streams[eventID]...)
}

// Since returns every retained event from the given global position on. Positions keep
// counting across evictions, so a position older than the retained window starts at the
// oldest event still held.
func (s *Store) Since(position int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := position - s.dropped
	if index < 0 {
		index = 0
	}
	if index >= len(s.history) {
		return []Event{}
	}
	return append([]Event{}, s.history[index:]...)
}

// Subscribe registers h for the given types, or for every type when none are given.
// The returned func removes the subscription.
func (s *Store) Subscribe(h Handler, types ...string) (unsubscribe func()) {
	sub := subscription{types: make(map[string]bool, len(types)), handler: h}
	for _, t := range types {
		sub.types[t] = true
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Wait blocks until every handler dispatched so far has returned
func (s *Store) Wait() {
	s.pending.Wait()
}
