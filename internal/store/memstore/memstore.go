// Package memstore provides the default in-memory journal driver. State is
// lost on restart, matching the service's no-persistence posture.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gavelpoint/auctioneer/internal/clock"
	"github.com/gavelpoint/auctioneer/internal/config"
	"github.com/gavelpoint/auctioneer/internal/event"
	"github.com/gavelpoint/auctioneer/internal/store"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func init() {
	store.Register("memory", openMemory)
}

func openMemory(_ context.Context, _ config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
	es := NewEventStore(clk)
	return &store.Repositories{
		Events: es,
		Closer: closerFunc(func() error { return nil }),
		Ping:   func(context.Context) error { return nil },
	}, nil
}

// EventStore implements event.Store in process memory.
type EventStore struct {
	mu     sync.RWMutex
	events []event.Event
	clock  clock.Clock
}

// NewEventStore returns an empty in-memory event store.
func NewEventStore(clk clock.Clock) *EventStore {
	return &EventStore{clock: clk}
}

func (s *EventStore) Append(_ context.Context, events ...event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.clock.Now().UTC()
		}
		s.events = append(s.events, e)
	}
	return nil
}

func (s *EventStore) Load(_ context.Context, aggregateID string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []event.Event
	for _, e := range s.events {
		if e.AggregateID == aggregateID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *EventStore) LoadByType(_ context.Context, eventType event.Type) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []event.Event
	for _, e := range s.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result, nil
}
