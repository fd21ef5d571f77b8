package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/gavelpoint/auctioneer/internal/clock"
	"github.com/gavelpoint/auctioneer/internal/event"
	"github.com/gavelpoint/auctioneer/internal/store/memstore"
)

func TestEventStore_AppendFillsDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	s := memstore.NewEventStore(clock.Mock{T: now})
	ctx := context.Background()

	err := s.Append(ctx, event.Event{
		AggregateID: "auction",
		Type:        event.BidPlaced,
		Data:        []byte(`{}`),
		Version:     1,
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	events, err := s.Load(ctx, "auction")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].ID == "" {
		t.Error("event id was not generated")
	}
	if !events[0].CreatedAt.Equal(now) {
		t.Errorf("created at = %v, want %v", events[0].CreatedAt, now)
	}
}

func TestEventStore_LoadFiltersByAggregate(t *testing.T) {
	s := memstore.NewEventStore(clock.Mock{T: time.Now()})
	ctx := context.Background()

	if err := s.Append(ctx,
		event.Event{AggregateID: "auction", Type: event.AuctionStarted, Version: 1},
		event.Event{AggregateID: "other", Type: event.AuctionStarted, Version: 1},
		event.Event{AggregateID: "auction", Type: event.AuctionStopped, Version: 2},
	); err != nil {
		t.Fatal(err)
	}

	events, err := s.Load(ctx, "auction")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != event.AuctionStarted || events[1].Type != event.AuctionStopped {
		t.Errorf("events out of order: %v, %v", events[0].Type, events[1].Type)
	}
}

func TestEventStore_LoadByType(t *testing.T) {
	s := memstore.NewEventStore(clock.Mock{T: time.Now()})
	ctx := context.Background()

	if err := s.Append(ctx,
		event.Event{AggregateID: "auction", Type: event.BidPlaced, Version: 1},
		event.Event{AggregateID: "auction", Type: event.PlayerSold, Version: 2},
		event.Event{AggregateID: "auction", Type: event.BidPlaced, Version: 3},
	); err != nil {
		t.Fatal(err)
	}

	events, err := s.LoadByType(ctx, event.BidPlaced)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
}
