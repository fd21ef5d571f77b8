package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/gavelpoint/auctioneer/internal/auction"
	"github.com/gavelpoint/auctioneer/internal/broadcast"
	"github.com/gavelpoint/auctioneer/internal/clock"
	"github.com/gavelpoint/auctioneer/internal/server"
	"github.com/gavelpoint/auctioneer/internal/store/memstore"
)

func newTestServer(t *testing.T) (*auction.Engine, http.Handler) {
	t.Helper()
	clk := clock.Mock{T: time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)}
	settings := auction.Settings{
		TeamCount:         2,
		StartingBudget:    1000,
		MaxPlayersPerTeam: 3,
		BasePrice:         10,
		BidIncrements: []auction.IncrementRule{
			{Threshold: 50, Increment: 5},
			{Threshold: 200, Increment: 10},
		},
	}
	engine, err := auction.NewEngine(settings, memstore.NewEventStore(clk), broadcast.Nop{}, slog.New(slog.DiscardHandler), noop.NewTracerProvider(), clk)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	srv := server.New(engine, nil, slog.New(slog.DiscardHandler))
	return engine, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var parsed map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("response is not JSON: %v: %s", err, w.Body.String())
		}
	}
	return w, parsed
}

func loadRoster(t *testing.T, h http.Handler) []string {
	t.Helper()
	w, resp := do(t, h, http.MethodPost, "/api/roster", map[string]any{
		"players": []map[string]string{
			{"name": "V. Sharma", "role": "Batter"},
			{"name": "A. Khan", "role": "Bowler"},
			{"name": "R. Patel", "role": "All-rounder"},
		},
		"teams": []string{"Tigers", "Falcons"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("load roster: got status %d: %s", w.Code, w.Body.String())
	}
	data := resp["data"].(map[string]any)
	var ids []string
	for _, p := range data["players"].([]any) {
		ids = append(ids, p.(map[string]any)["id"].(string))
	}
	return ids
}

func TestServer_StateAfterRosterLoad(t *testing.T) {
	_, h := newTestServer(t)
	loadRoster(t, h)

	w, resp := do(t, h, http.MethodGet, "/api/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	data := resp["data"].(map[string]any)
	if got := len(data["players"].([]any)); got != 3 {
		t.Errorf("got %d players, want 3", got)
	}
	teams := data["teams"].([]any)
	if got := len(teams); got != 2 {
		t.Fatalf("got %d teams, want 2", got)
	}
	if name := teams[0].(map[string]any)["name"]; name != "Tigers" {
		t.Errorf("got team name %v, want %q", name, "Tigers")
	}
	if status := data["status"]; status != "stopped" {
		t.Errorf("got status %v, want %q", status, "stopped")
	}
}

func TestServer_BidAndSellFlow(t *testing.T) {
	_, h := newTestServer(t)
	ids := loadRoster(t, h)

	if w, _ := do(t, h, http.MethodPost, "/api/auction/start", nil); w.Code != http.StatusOK {
		t.Fatalf("start auction: got status %d", w.Code)
	}

	w, resp := do(t, h, http.MethodPost, "/api/auction/lots/"+ids[0]+"/start", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start bidding: got status %d: %s", w.Code, w.Body.String())
	}
	bid := resp["data"].(map[string]any)
	if amount := bid["amount"].(float64); amount != 10 {
		t.Errorf("opening amount = %v, want 10", amount)
	}

	// First bid claims the base price.
	w, resp = do(t, h, http.MethodPost, "/api/auction/bid", map[string]int{"team_id": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("first bid: got status %d: %s", w.Code, w.Body.String())
	}
	bid = resp["data"].(map[string]any)
	if amount := bid["amount"].(float64); amount != 10 {
		t.Errorf("first bid amount = %v, want 10", amount)
	}

	// Second bid moves by the increment for the 10 tier.
	w, resp = do(t, h, http.MethodPost, "/api/auction/bid", map[string]int{"team_id": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("second bid: got status %d", w.Code)
	}
	bid = resp["data"].(map[string]any)
	if amount := bid["amount"].(float64); amount != 15 {
		t.Errorf("second bid amount = %v, want 15", amount)
	}

	w, resp = do(t, h, http.MethodPost, "/api/auction/sell", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sell: got status %d: %s", w.Code, w.Body.String())
	}
	sale := resp["data"].(map[string]any)
	if sale["team_id"].(float64) != 2 {
		t.Errorf("sold to team %v, want 2", sale["team_id"])
	}
	if sale["amount"].(float64) != 15 {
		t.Errorf("sale amount = %v, want 15", sale["amount"])
	}

	_, resp = do(t, h, http.MethodGet, "/api/state", nil)
	teams := resp["data"].(map[string]any)["teams"].([]any)
	budget := teams[1].(map[string]any)["budget"].(float64)
	if budget != 985 {
		t.Errorf("winning team budget = %v, want 985", budget)
	}
}

func TestServer_ErrorMapping(t *testing.T) {
	_, h := newTestServer(t)
	ids := loadRoster(t, h)

	// Selling with no live lot is an invalid-state error.
	if w, _ := do(t, h, http.MethodPost, "/api/auction/sell", nil); w.Code != http.StatusBadRequest {
		t.Errorf("sell without lot: got status %d, want 400", w.Code)
	}

	// Bidding on an unknown player is not-found.
	do(t, h, http.MethodPost, "/api/auction/start", nil)
	if w, _ := do(t, h, http.MethodPost, "/api/auction/lots/no-such-player/start", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown player: got status %d, want 404", w.Code)
	}

	// An out-of-range team id is a validation error, not not-found.
	do(t, h, http.MethodPost, "/api/auction/lots/"+ids[0]+"/start", nil)
	if w, _ := do(t, h, http.MethodPost, "/api/auction/bid", map[string]int{"team_id": 99}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown team: got status %d, want 400", w.Code)
	}

	// Malformed JSON body.
	req := httptest.NewRequest(http.MethodPost, "/api/auction/bid", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got status %d, want 400", w.Code)
	}
}

func TestServer_UndoEndpoints(t *testing.T) {
	_, h := newTestServer(t)
	ids := loadRoster(t, h)

	do(t, h, http.MethodPost, "/api/auction/start", nil)
	do(t, h, http.MethodPost, "/api/auction/lots/"+ids[0]+"/start", nil)
	do(t, h, http.MethodPost, "/api/auction/bid", map[string]int{"team_id": 1})
	do(t, h, http.MethodPost, "/api/auction/bid", map[string]int{"team_id": 2})

	w, resp := do(t, h, http.MethodPost, "/api/auction/undo-bid", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo bid: got status %d", w.Code)
	}
	bid := resp["data"].(map[string]any)
	if bid["amount"].(float64) != 10 || bid["bidding_team"].(float64) != 1 {
		t.Errorf("after undo got amount=%v team=%v, want 10/1", bid["amount"], bid["bidding_team"])
	}

	do(t, h, http.MethodPost, "/api/auction/sell", nil)
	w, resp = do(t, h, http.MethodPost, "/api/auction/undo-sale", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo sale: got status %d: %s", w.Code, w.Body.String())
	}
	player := resp["data"].(map[string]any)
	if player["status"] != "available" {
		t.Errorf("player status after undo = %v, want available", player["status"])
	}

	// Nothing left to undo.
	if w, _ = do(t, h, http.MethodPost, "/api/auction/undo-sale", nil); w.Code != http.StatusBadRequest {
		t.Errorf("second undo: got status %d, want 400", w.Code)
	}
}

func TestServer_StatsEndpoint(t *testing.T) {
	_, h := newTestServer(t)
	ids := loadRoster(t, h)

	do(t, h, http.MethodPost, "/api/auction/start", nil)
	do(t, h, http.MethodPost, "/api/auction/lots/"+ids[0]+"/start", nil)
	do(t, h, http.MethodPost, "/api/auction/bid", map[string]int{"team_id": 1})
	do(t, h, http.MethodPost, "/api/auction/sell", nil)

	w, resp := do(t, h, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: got status %d", w.Code)
	}
	data := resp["data"].(map[string]any)
	if got := data["total_sold"].(float64); got != 1 {
		t.Errorf("total_sold = %v, want 1", got)
	}
}

func TestServer_SettingsLockedWhileRunning(t *testing.T) {
	_, h := newTestServer(t)
	loadRoster(t, h)
	do(t, h, http.MethodPost, "/api/auction/start", nil)

	settings := auction.Settings{
		TeamCount:         2,
		StartingBudget:    500,
		MaxPlayersPerTeam: 3,
		BasePrice:         20,
	}
	w, _ := do(t, h, http.MethodPut, "/api/settings", settings)
	if w.Code != http.StatusBadRequest {
		t.Errorf("settings while running: got status %d, want 400", w.Code)
	}
}
