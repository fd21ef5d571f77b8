// Package auction implements the live cricket-player auction engine: one lot
// under the hammer at a time, per-lot bid history for stepping bids back, a
// bounded sale log for reversing sales, and fast-track re-auction of unsold
// players. All state is in process memory behind a single mutex.
package auction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gavelpoint/auctioneer/internal/broadcast"
	"github.com/gavelpoint/auctioneer/internal/clock"
	"github.com/gavelpoint/auctioneer/internal/event"
)

// AggregateID is the journal aggregate for the single auction this process
// runs.
const AggregateID = "auction"

// maxSaleLog bounds the undo log of completed sales.
const maxSaleLog = 50

// Engine owns all auction state. Every operation takes the mutex for its
// full validate-mutate-publish cycle, so concurrent admin requests are
// serialized into one writer.
type Engine struct {
	mu       sync.RWMutex
	settings Settings
	players  []*Player
	byID     map[string]*Player
	teams    []*Team
	status   Status
	current  *CurrentBid
	history  map[string][]BidRecord
	sales    []SaleRecord
	stats    Stats
	version  int

	gateway broadcast.Gateway
	journal event.Store
	logger  *slog.Logger
	tracer  trace.Tracer
	clock   clock.Clock
}

// NewEngine creates an engine with an empty roster.
func NewEngine(settings Settings, journal event.Store, gw broadcast.Gateway, logger *slog.Logger, tp trace.TracerProvider, clk clock.Clock) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		settings: settings,
		byID:     make(map[string]*Player),
		history:  make(map[string][]BidRecord),
		status:   StatusStopped,
		gateway:  gw,
		journal:  journal,
		logger:   logger,
		tracer:   tp.Tracer("github.com/gavelpoint/auctioneer/internal/auction"),
		clock:    clk,
	}, nil
}

// Validate checks settings invariants. Increment rules must be sorted by
// ascending threshold.
func (s Settings) Validate() error {
	if s.TeamCount < 1 {
		return fmt.Errorf("%w: team count must be at least 1", ErrValidation)
	}
	if s.StartingBudget < 0 {
		return fmt.Errorf("%w: starting budget cannot be negative", ErrValidation)
	}
	if s.MaxPlayersPerTeam < 1 {
		return fmt.Errorf("%w: max players per team must be at least 1", ErrValidation)
	}
	if s.BasePrice < 0 {
		return fmt.Errorf("%w: base price cannot be negative", ErrValidation)
	}
	for i := 1; i < len(s.BidIncrements); i++ {
		if s.BidIncrements[i].Threshold <= s.BidIncrements[i-1].Threshold {
			return fmt.Errorf("%w: bid increment thresholds must be strictly ascending", ErrValidation)
		}
	}
	for _, r := range s.BidIncrements {
		if r.Increment <= 0 {
			return fmt.Errorf("%w: bid increments must be positive", ErrValidation)
		}
	}
	if s.EnableRetention && s.RetentionsPerTeam < 1 {
		return fmt.Errorf("%w: retentions per team must be at least 1 when retention is enabled", ErrValidation)
	}
	return nil
}

// UpdateSettings replaces the auction configuration. Only allowed while the
// auction is stopped; team budgets already on the board are not retrofitted.
func (e *Engine) UpdateSettings(ctx context.Context, s Settings) error {
	ctx, span := e.tracer.Start(ctx, "Engine.UpdateSettings")
	defer span.End()

	if err := s.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusStopped {
		return fmt.Errorf("%w: settings can only change while the auction is stopped", ErrInvalidState)
	}
	if len(e.teams) > 0 && s.TeamCount != len(e.teams) {
		return fmt.Errorf("%w: team count cannot change after roster upload", ErrValidation)
	}

	e.settings = s
	e.logger.InfoContext(ctx, "settings updated",
		slog.Int("team_count", s.TeamCount),
		slog.Int("base_price", s.BasePrice),
	)
	return nil
}

// StartAuction moves the auction to running. At least one non-captain player
// must still be available.
func (e *Engine) StartAuction(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.StartAuction")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.players) == 0 {
		return fmt.Errorf("%w: no roster uploaded", ErrInvalidState)
	}
	if !e.hasAuctionablePlayers() {
		return fmt.Errorf("%w: no available players to auction", ErrInvalidState)
	}

	e.status = StatusRunning
	e.appendEvent(ctx, event.AuctionStarted, event.StatusData{Status: string(e.status)})
	e.gateway.Emit(broadcast.TopicStatusChanged, e.status)
	e.logger.InfoContext(ctx, "auction started", slog.Int("players", len(e.players)))
	return nil
}

// StopAuction pauses the auction and abandons any live lot display.
func (e *Engine) StopAuction(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.StopAuction")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.status = StatusStopped
	e.clearStrayBids()
	e.current = nil

	e.appendEvent(ctx, event.AuctionStopped, event.StatusData{Status: string(e.status)})
	e.gateway.Emit(broadcast.TopicStatusChanged, e.status)
	e.gateway.Emit(broadcast.TopicBidChanged, nil)
	e.logger.InfoContext(ctx, "auction stopped")
	return nil
}

// StartBidding opens a lot for the given player at the base price.
func (e *Engine) StartBidding(ctx context.Context, playerID string) (*CurrentBid, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.StartBidding",
		trace.WithAttributes(attribute.String("player.id", playerID)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.byID[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}
	if e.status != StatusRunning && e.status != StatusFastTrack {
		return nil, fmt.Errorf("%w: auction is not running", ErrInvalidState)
	}
	if e.current != nil {
		return nil, fmt.Errorf("%w: another lot is already live", ErrInvalidState)
	}
	if p.Category == CategoryCaptain {
		return nil, fmt.Errorf("%w: captains are not auctioned", ErrInvalidState)
	}
	if p.Status != PlayerAvailable {
		return nil, fmt.Errorf("%w: player %s is %s", ErrInvalidState, p.Name, p.Status)
	}

	e.current = &CurrentBid{PlayerID: p.ID, Amount: e.settings.BasePrice}
	p.CurrentBid = e.settings.BasePrice
	p.BiddingTeam = 0
	delete(e.history, p.ID)

	e.appendEvent(ctx, event.BiddingStarted, event.BiddingStartedData{
		PlayerID:  p.ID,
		BasePrice: e.settings.BasePrice,
	})
	e.gateway.Emit(broadcast.TopicBidChanged, *e.current)
	e.logger.InfoContext(ctx, "bidding started",
		slog.String("player_id", p.ID),
		slog.String("player", p.Name),
		slog.Int("base_price", e.settings.BasePrice),
	)
	cb := *e.current
	return &cb, nil
}

// PlaceBid registers the given team as the new leading bidder. The first bid
// claims the base price unchanged; subsequent bids add the configured
// increment. The previous leading bid is pushed onto the lot's history so it
// can be stepped back.
func (e *Engine) PlaceBid(ctx context.Context, teamID int) (*CurrentBid, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.PlaceBid",
		trace.WithAttributes(attribute.Int("team.id", teamID)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil, fmt.Errorf("%w: no lot is live", ErrInvalidState)
	}
	t := e.team(teamID)
	if t == nil {
		return nil, fmt.Errorf("%w: unknown team %d", ErrValidation, teamID)
	}
	p := e.byID[e.current.PlayerID]

	newAmount := e.current.Amount
	if e.current.BiddingTeam != 0 {
		newAmount += NextIncrement(e.current.Amount, e.settings.BidIncrements)
	}
	if t.Budget < newAmount {
		return nil, fmt.Errorf("%w: team %s has %d, bid requires %d", ErrInsufficientBudget, t.Name, t.Budget, newAmount)
	}

	if prev := e.team(e.current.BiddingTeam); prev != nil {
		e.history[p.ID] = append(e.history[p.ID], BidRecord{
			TeamID:   prev.ID,
			TeamName: prev.Name,
			Amount:   e.current.Amount,
		})
	}

	e.current.Amount = newAmount
	e.current.BiddingTeam = teamID
	p.CurrentBid = newAmount
	p.BiddingTeam = teamID

	e.appendEvent(ctx, event.BidPlaced, event.BidData{PlayerID: p.ID, TeamID: teamID, Amount: newAmount})
	e.gateway.Emit(broadcast.TopicBidChanged, *e.current)
	e.logger.InfoContext(ctx, "bid placed",
		slog.String("player_id", p.ID),
		slog.Int("team_id", teamID),
		slog.Int("amount", newAmount),
	)
	cb := *e.current
	return &cb, nil
}

// SellPlayer settles the live lot to the leading bidder, debiting the team's
// budget and recording a reversible sale in the action log.
func (e *Engine) SellPlayer(ctx context.Context) (*SaleRecord, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.SellPlayer")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil, fmt.Errorf("%w: no lot is live", ErrInvalidState)
	}
	if e.current.BiddingTeam == 0 {
		return nil, fmt.Errorf("%w: no team has bid yet", ErrInvalidState)
	}

	p := e.byID[e.current.PlayerID]
	t := e.team(e.current.BiddingTeam)
	if e.squadCount(t) >= e.settings.MaxPlayersPerTeam {
		return nil, fmt.Errorf("%w: team %s has reached the maximum of %d players", ErrTeamFull, t.Name, e.settings.MaxPlayersPerTeam)
	}

	amount := e.current.Amount
	rec := SaleRecord{
		ID:          newID(),
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		TeamID:      t.ID,
		TeamName:    t.Name,
		Amount:      amount,
		PrevPlayer:  *p,
		PrevBudget:  t.Budget,
		PrevPlayers: append([]string(nil), t.Players...),
		Time:        e.clock.Now().UTC(),
	}
	e.sales = append(e.sales, rec)
	if len(e.sales) > maxSaleLog {
		e.sales = e.sales[len(e.sales)-maxSaleLog:]
	}

	p.Status = PlayerSold
	p.FinalBid = amount
	p.Team = t.ID
	p.CurrentBid = 0
	p.BiddingTeam = 0
	t.Budget -= amount
	t.Players = append(t.Players, p.ID)
	delete(e.history, p.ID)
	e.current = nil
	e.recomputeStats()

	e.appendEvent(ctx, event.PlayerSold, event.SaleData{PlayerID: p.ID, TeamID: t.ID, Amount: amount})
	e.gateway.Emit(broadcast.TopicLotSold, rec)
	e.gateway.Emit(broadcast.TopicTeamChanged, *t)
	e.gateway.Emit(broadcast.TopicStatsChanged, e.stats)
	e.logger.InfoContext(ctx, "player sold",
		slog.String("player_id", p.ID),
		slog.String("player", p.Name),
		slog.Int("team_id", t.ID),
		slog.Int("amount", amount),
	)
	return &rec, nil
}

// MarkUnsold settles the live lot with no buyer. The player becomes eligible
// for a later fast-track round.
func (e *Engine) MarkUnsold(ctx context.Context) (*Player, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.MarkUnsold")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil, fmt.Errorf("%w: no lot is live", ErrInvalidState)
	}

	p := e.byID[e.current.PlayerID]
	p.Status = PlayerUnsold
	p.CurrentBid = 0
	p.BiddingTeam = 0
	delete(e.history, p.ID)
	e.current = nil
	e.recomputeStats()

	e.appendEvent(ctx, event.PlayerUnsold, event.PlayerData{PlayerID: p.ID})
	e.gateway.Emit(broadcast.TopicLotUnsold, *p)
	e.gateway.Emit(broadcast.TopicStatsChanged, e.stats)
	e.logger.InfoContext(ctx, "player unsold", slog.String("player_id", p.ID), slog.String("player", p.Name))
	cp := *p
	return &cp, nil
}

// CancelBidding aborts the live lot and returns the player to available,
// without penalizing future eligibility.
func (e *Engine) CancelBidding(ctx context.Context) (*Player, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.CancelBidding")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil, fmt.Errorf("%w: no lot is live", ErrInvalidState)
	}

	p := e.byID[e.current.PlayerID]
	p.Status = PlayerAvailable
	p.CurrentBid = 0
	p.BiddingTeam = 0
	p.FinalBid = 0
	delete(e.history, p.ID)
	e.current = nil

	e.appendEvent(ctx, event.BiddingCancelled, event.PlayerData{PlayerID: p.ID})
	e.gateway.Emit(broadcast.TopicBiddingCancelled, *p)
	e.gateway.Emit(broadcast.TopicBidChanged, nil)
	e.logger.InfoContext(ctx, "bidding cancelled", slog.String("player_id", p.ID))
	cp := *p
	return &cp, nil
}

// UndoCurrentBid steps the live lot back one bid. With no history left it
// reverts to the no-bids-yet state at base price; calling it again is a
// no-op, not an error.
func (e *Engine) UndoCurrentBid(ctx context.Context) (*CurrentBid, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.UndoCurrentBid")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil, fmt.Errorf("%w: no lot is live", ErrInvalidState)
	}

	p := e.byID[e.current.PlayerID]
	if stack := e.history[p.ID]; len(stack) > 0 {
		rec := stack[len(stack)-1]
		e.history[p.ID] = stack[:len(stack)-1]
		e.current.Amount = rec.Amount
		e.current.BiddingTeam = rec.TeamID
	} else {
		e.current.Amount = e.settings.BasePrice
		e.current.BiddingTeam = 0
	}
	p.CurrentBid = e.current.Amount
	p.BiddingTeam = e.current.BiddingTeam

	e.appendEvent(ctx, event.BidReverted, event.BidData{
		PlayerID: p.ID,
		TeamID:   e.current.BiddingTeam,
		Amount:   e.current.Amount,
	})
	e.gateway.Emit(broadcast.TopicBidReverted, *e.current)
	e.gateway.Emit(broadcast.TopicBidChanged, *e.current)
	e.logger.InfoContext(ctx, "bid reverted",
		slog.String("player_id", p.ID),
		slog.Int("amount", e.current.Amount),
	)
	cb := *e.current
	return &cb, nil
}

// UndoLastSale reverses the most recent sale in the action log, whichever
// player and team it involved, restoring the recorded pre-image.
func (e *Engine) UndoLastSale(ctx context.Context) (*Player, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.UndoLastSale")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.sales) == 0 {
		return nil, fmt.Errorf("%w: no recent sale to undo", ErrInvalidState)
	}

	rec := e.sales[len(e.sales)-1]
	p := e.byID[rec.PlayerID]
	if p == nil {
		return nil, fmt.Errorf("%w: player %s no longer on roster", ErrNotFound, rec.PlayerID)
	}
	e.sales = e.sales[:len(e.sales)-1]
	*p = rec.PrevPlayer
	if t := e.team(rec.TeamID); t != nil {
		t.Budget = rec.PrevBudget
		t.Players = append([]string(nil), rec.PrevPlayers...)
		e.gateway.Emit(broadcast.TopicTeamChanged, *t)
	}
	e.recomputeStats()

	e.appendEvent(ctx, event.SaleReverted, event.SaleData{PlayerID: rec.PlayerID, TeamID: rec.TeamID, Amount: rec.Amount})
	e.gateway.Emit(broadcast.TopicSaleReverted, *p)
	e.gateway.Emit(broadcast.TopicStatsChanged, e.stats)
	e.logger.InfoContext(ctx, "sale reverted",
		slog.String("player_id", rec.PlayerID),
		slog.Int("team_id", rec.TeamID),
		slog.Int("amount", rec.Amount),
	)
	cp := *p
	return &cp, nil
}

// StartFastTrack opens a secondary round restricted to previously unsold
// players, returning them all to available.
func (e *Engine) StartFastTrack(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.StartFastTrack")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, p := range e.players {
		if p.Status == PlayerUnsold {
			n++
		}
	}
	if n == 0 {
		return fmt.Errorf("%w: no unsold players for fast-track", ErrInvalidState)
	}

	for _, p := range e.players {
		if p.Status == PlayerUnsold {
			p.Status = PlayerAvailable
			p.CurrentBid = 0
			p.BiddingTeam = 0
			p.FinalBid = 0
		}
	}
	e.status = StatusFastTrack
	e.recomputeStats()

	e.appendEvent(ctx, event.FastTrackStarted, event.StatusData{Status: string(e.status)})
	e.gateway.Emit(broadcast.TopicFastTrackStarted, n)
	e.gateway.Emit(broadcast.TopicStatusChanged, e.status)
	e.logger.InfoContext(ctx, "fast-track started", slog.Int("players", n))
	return nil
}

// EndFastTrack closes the fast-track round: stopped if auctionable players
// remain, finished otherwise.
func (e *Engine) EndFastTrack(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.EndFastTrack")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusFastTrack {
		return fmt.Errorf("%w: fast-track is not running", ErrInvalidState)
	}

	if e.hasAuctionablePlayers() {
		e.status = StatusStopped
	} else {
		e.status = StatusFinished
	}
	e.clearStrayBids()
	e.current = nil

	e.appendEvent(ctx, event.FastTrackEnded, event.StatusData{Status: string(e.status)})
	e.gateway.Emit(broadcast.TopicFastTrackEnded, e.status)
	e.gateway.Emit(broadcast.TopicStatusChanged, e.status)
	e.logger.InfoContext(ctx, "fast-track ended", slog.String("status", string(e.status)))
	return nil
}

// ResetAuction returns every player and team to the pre-auction state.
// Captains keep their team assignment with a zeroed price; budgets are
// restored; the sale log and every bid-history stack are cleared.
func (e *Engine) ResetAuction(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.ResetAuction")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.players) == 0 {
		return fmt.Errorf("%w: no roster uploaded", ErrInvalidState)
	}

	for _, p := range e.players {
		if p.Category == CategoryCaptain {
			p.FinalBid = 0
			continue
		}
		p.Status = PlayerAvailable
		p.CurrentBid = 0
		p.FinalBid = 0
		p.Team = 0
		p.BiddingTeam = 0
	}
	for _, t := range e.teams {
		t.Budget = e.settings.StartingBudget
		t.Players = t.Players[:0]
		if t.Captain != "" {
			t.Players = append(t.Players, t.Captain)
		}
	}
	e.current = nil
	e.sales = nil
	e.history = make(map[string][]BidRecord)
	e.status = StatusStopped
	e.recomputeStats()

	e.appendEvent(ctx, event.AuctionReset, event.StatusData{Status: string(e.status)})
	e.gateway.Emit(broadcast.TopicAuctionReset, nil)
	e.gateway.Emit(broadcast.TopicRosterChanged, nil)
	e.gateway.Emit(broadcast.TopicStatusChanged, e.status)
	e.logger.InfoContext(ctx, "auction reset")
	return nil
}

// FinishAuction marks the auction finished. Finished is not enforced as a
// terminal state: reset and a fresh start remain possible.
func (e *Engine) FinishAuction(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.FinishAuction")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.status = StatusFinished
	e.clearStrayBids()
	e.current = nil

	e.appendEvent(ctx, event.AuctionFinished, event.StatusData{Status: string(e.status)})
	e.gateway.Emit(broadcast.TopicStatusChanged, e.status)
	e.logger.InfoContext(ctx, "auction finished")
	return nil
}

// Snapshot returns a deep copy of the full auction state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// Stats returns the current derived sale statistics.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// Status returns the auction lifecycle state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// CurrentBid returns a copy of the live lot, or nil when no lot is live.
func (e *Engine) CurrentBid() *CurrentBid {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return nil
	}
	cb := *e.current
	return &cb
}

// --- internals; callers must hold e.mu ---

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:   e.status,
		Settings: e.settings,
		Players:  make([]Player, 0, len(e.players)),
		Teams:    make([]Team, 0, len(e.teams)),
		Stats:    e.stats,
	}
	for _, p := range e.players {
		snap.Players = append(snap.Players, *p)
	}
	for _, t := range e.teams {
		tc := *t
		tc.Players = append([]string(nil), t.Players...)
		snap.Teams = append(snap.Teams, tc)
	}
	if e.current != nil {
		cb := *e.current
		snap.CurrentBid = &cb
	}
	return snap
}

func (e *Engine) team(id int) *Team {
	if id < 1 || id > len(e.teams) {
		return nil
	}
	return e.teams[id-1]
}

// squadCount counts the slots a team has filled through sales and captain
// assignment.
func (e *Engine) squadCount(t *Team) int {
	n := 0
	for _, id := range t.Players {
		if p, ok := e.byID[id]; ok && (p.Status == PlayerSold || p.Status == PlayerAssigned) {
			n++
		}
	}
	return n
}

func (e *Engine) hasAuctionablePlayers() bool {
	for _, p := range e.players {
		if p.Status == PlayerAvailable && p.Category != CategoryCaptain {
			return true
		}
	}
	return false
}

// clearStrayBids zeroes leftover live-bid display fields on players that
// were never settled.
func (e *Engine) clearStrayBids() {
	for _, p := range e.players {
		if p.Status == PlayerAvailable {
			p.CurrentBid = 0
			p.BiddingTeam = 0
		}
	}
}

func (e *Engine) recomputeStats() {
	players := make([]Player, 0, len(e.players))
	for _, p := range e.players {
		players = append(players, *p)
	}
	e.stats = CalculateStats(players)
}

// appendEvent journals a domain event. Persistence is best-effort: a journal
// failure is logged but never rolls back the committed mutation.
func (e *Engine) appendEvent(ctx context.Context, t event.Type, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.ErrorContext(ctx, "marshalling event payload", slog.String("type", string(t)), slog.Any("error", err))
		return
	}
	e.version++
	evt := event.Event{
		AggregateID: AggregateID,
		Type:        t,
		Data:        data,
		Version:     e.version,
		CreatedAt:   e.clock.Now().UTC(),
	}
	if err := e.journal.Append(ctx, evt); err != nil {
		e.logger.ErrorContext(ctx, "appending journal event", slog.String("type", string(t)), slog.Any("error", err))
	}
}
