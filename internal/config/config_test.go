package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gavelpoint/auctioneer/internal/config"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "valid full config",
			yaml: `
server:
  port: 9090
database:
  host: "db.example.com"
  port: 5433
  user: "auctioneer"
  password: "secret"
  dbname: "auctions"
  sslmode: "require"
  driver: "postgres"
telemetry:
  service_name: "my-auction"
  otlp_endpoint: "localhost:4318"
auction:
  team_count: 8
  starting_budget: 5000
  max_players_per_team: 15
  base_price: 20
`,
			wantErr: false,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.Database.Port != 5433 {
					t.Errorf("got db port %d, want %d", cfg.Database.Port, 5433)
				}
				if cfg.Server.Port != 9090 {
					t.Errorf("got server port %d, want %d", cfg.Server.Port, 9090)
				}
				if cfg.Telemetry.ServiceName != "my-auction" {
					t.Errorf("got service name %q, want %q", cfg.Telemetry.ServiceName, "my-auction")
				}
				if cfg.Auction.TeamCount != 8 {
					t.Errorf("got team count %d, want %d", cfg.Auction.TeamCount, 8)
				}
			},
		},
		{
			name:    "defaults applied",
			yaml:    `{}`,
			wantErr: false,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				if cfg.Database.Host != "localhost" {
					t.Errorf("got db host %q, want %q", cfg.Database.Host, "localhost")
				}
				if cfg.Database.Driver != "memory" {
					t.Errorf("got driver %q, want %q", cfg.Database.Driver, "memory")
				}
				if cfg.Server.Port != 8080 {
					t.Errorf("got server port %d, want %d", cfg.Server.Port, 8080)
				}
				if cfg.Telemetry.ServiceName != "auctioneer" {
					t.Errorf("got service name %q, want %q", cfg.Telemetry.ServiceName, "auctioneer")
				}
				if cfg.Auction.BasePrice != 10 {
					t.Errorf("got base price %d, want %d", cfg.Auction.BasePrice, 10)
				}
			},
		},
		{
			name:    "invalid yaml",
			yaml:    `{{{invalid`,
			wantErr: true,
		},
		{
			name: "invalid driver rejected",
			yaml: `
database:
  driver: "mongodb"
`,
			wantErr: true,
		},
		{
			name: "announcer without token rejected",
			yaml: `
announcer:
  enabled: true
`,
			wantErr: true,
		},
		{
			name: "bad auction settings rejected",
			yaml: `
auction:
  team_count: 0
`,
			wantErr: true,
		},
		{
			name: "unsorted increments rejected",
			yaml: `
auction:
  bid_increments:
    - threshold: 100
      increment: 10
    - threshold: 50
      increment: 5
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := config.Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=user password=pass dbname=testdb sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
