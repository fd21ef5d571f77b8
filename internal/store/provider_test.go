package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/gavelpoint/auctioneer/internal/clock"
	"github.com/gavelpoint/auctioneer/internal/config"
	"github.com/gavelpoint/auctioneer/internal/store"

	// Import drivers so their init() functions register them.
	_ "github.com/gavelpoint/auctioneer/internal/store/memstore"
	_ "github.com/gavelpoint/auctioneer/internal/store/postgres"
)

// fakeDriver is a store.Driver that always succeeds without connecting to a DB.
func fakeDriver(_ context.Context, _ config.DatabaseConfig, _ clock.Clock) (*store.Repositories, error) {
	return &store.Repositories{}, nil
}

func TestOpen(t *testing.T) {
	// Register a test driver.
	store.Register("test-driver", fakeDriver)

	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{
			name:    "registered driver succeeds",
			driver:  "test-driver",
			wantErr: false,
		},
		{
			name:    "memory driver succeeds",
			driver:  "memory",
			wantErr: false,
		},
		{
			name:    "unknown driver fails",
			driver:  "nonexistent",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DatabaseConfig{Driver: tt.driver}
			_, err := store.Open(context.Background(), cfg, clock.Real{})
			if (err != nil) != tt.wantErr {
				t.Errorf("Open(driver=%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
		})
	}
}

func TestOpen_PostgresRegistered(t *testing.T) {
	// The postgres driver will fail to actually connect (no DB), but the
	// error must be a connection error, not an unknown-driver error.
	cfg := config.DatabaseConfig{Driver: "postgres", Host: "localhost", Port: 1}
	_, err := store.Open(context.Background(), cfg, clock.Real{})
	if err == nil {
		t.Fatal("expected error (no DB running), got nil")
	}
	if strings.Contains(err.Error(), "unknown store driver") {
		t.Errorf("expected connection error, got unknown driver error: %v", err)
	}
}

func TestMemoryDriver_PingAndClose(t *testing.T) {
	repos, err := store.Open(context.Background(), config.DatabaseConfig{Driver: "memory"}, clock.Real{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := repos.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := repos.Closer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
