package auction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gavelpoint/auctioneer/internal/event"
)

// Recover rebuilds the auction from the journal, so a replica taking over
// leadership resumes an in-flight auction, including a lot mid-bid. Returns
// the number of events applied; an empty journal is not an error.
func (e *Engine) Recover(ctx context.Context) (int, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Recover")
	defer span.End()

	events, err := e.journal.Load(ctx, AggregateID)
	if err != nil {
		return 0, fmt.Errorf("loading journal: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, evt := range events {
		if err := e.apply(evt); err != nil {
			return 0, fmt.Errorf("replaying %s (version %d): %w", evt.Type, evt.Version, err)
		}
		e.version = evt.Version
	}
	e.recomputeStats()

	e.logger.InfoContext(ctx, "auction recovered from journal",
		slog.Int("events", len(events)),
		slog.String("status", string(e.status)),
	)
	return len(events), nil
}

// apply replays one journal event onto the state. It mirrors the mutations
// the live operations perform, without validation, journaling or broadcast.
func (e *Engine) apply(evt event.Event) error {
	switch evt.Type {
	case event.RosterLoaded:
		var d event.RosterLoadedData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling roster: %w", err)
		}
		var players []Player
		if err := json.Unmarshal(d.Players, &players); err != nil {
			return fmt.Errorf("unmarshalling players: %w", err)
		}
		var teams []Team
		if err := json.Unmarshal(d.Teams, &teams); err != nil {
			return fmt.Errorf("unmarshalling teams: %w", err)
		}
		if len(d.Settings) > 0 {
			if err := json.Unmarshal(d.Settings, &e.settings); err != nil {
				return fmt.Errorf("unmarshalling settings: %w", err)
			}
		}
		e.players = make([]*Player, 0, len(players))
		e.byID = make(map[string]*Player, len(players))
		for i := range players {
			p := players[i]
			e.players = append(e.players, &p)
			e.byID[p.ID] = &p
		}
		e.teams = make([]*Team, 0, len(teams))
		for i := range teams {
			t := teams[i]
			e.teams = append(e.teams, &t)
		}
		e.current = nil
		e.sales = nil
		e.history = make(map[string][]BidRecord)
		e.status = StatusStopped

	case event.RosterCleared:
		e.players = nil
		e.byID = make(map[string]*Player)
		e.teams = nil
		e.current = nil
		e.sales = nil
		e.history = make(map[string][]BidRecord)
		e.status = StatusStopped

	case event.AuctionStarted:
		e.status = StatusRunning

	case event.AuctionStopped:
		e.status = StatusStopped
		e.clearStrayBids()
		e.current = nil

	case event.AuctionFinished:
		e.status = StatusFinished
		e.clearStrayBids()
		e.current = nil

	case event.AuctionReset:
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

	case event.BiddingStarted:
		var d event.BiddingStartedData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling bidding started: %w", err)
		}
		p, ok := e.byID[d.PlayerID]
		if !ok {
			return fmt.Errorf("player %s not in roster", d.PlayerID)
		}
		e.current = &CurrentBid{PlayerID: p.ID, Amount: d.BasePrice}
		p.CurrentBid = d.BasePrice
		p.BiddingTeam = 0
		delete(e.history, p.ID)

	case event.BidPlaced:
		var d event.BidData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling bid: %w", err)
		}
		if e.current == nil {
			return fmt.Errorf("bid without a live lot")
		}
		p := e.byID[e.current.PlayerID]
		if prev := e.team(e.current.BiddingTeam); prev != nil {
			e.history[p.ID] = append(e.history[p.ID], BidRecord{
				TeamID:   prev.ID,
				TeamName: prev.Name,
				Amount:   e.current.Amount,
			})
		}
		e.current.Amount = d.Amount
		e.current.BiddingTeam = d.TeamID
		p.CurrentBid = d.Amount
		p.BiddingTeam = d.TeamID

	case event.BidReverted:
		var d event.BidData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling bid revert: %w", err)
		}
		if e.current == nil {
			return fmt.Errorf("bid revert without a live lot")
		}
		p := e.byID[e.current.PlayerID]
		if stack := e.history[p.ID]; len(stack) > 0 {
			e.history[p.ID] = stack[:len(stack)-1]
		}
		e.current.Amount = d.Amount
		e.current.BiddingTeam = d.TeamID
		p.CurrentBid = d.Amount
		p.BiddingTeam = d.TeamID

	case event.BiddingCancelled:
		if e.current == nil {
			return fmt.Errorf("cancel without a live lot")
		}
		p := e.byID[e.current.PlayerID]
		p.Status = PlayerAvailable
		p.CurrentBid = 0
		p.BiddingTeam = 0
		p.FinalBid = 0
		delete(e.history, p.ID)
		e.current = nil

	case event.PlayerSold:
		var d event.SaleData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling sale: %w", err)
		}
		p, ok := e.byID[d.PlayerID]
		if !ok {
			return fmt.Errorf("player %s not in roster", d.PlayerID)
		}
		t := e.team(d.TeamID)
		if t == nil {
			return fmt.Errorf("team %d not in roster", d.TeamID)
		}
		e.sales = append(e.sales, SaleRecord{
			ID:          newID(),
			PlayerID:    p.ID,
			PlayerName:  p.Name,
			TeamID:      t.ID,
			TeamName:    t.Name,
			Amount:      d.Amount,
			PrevPlayer:  *p,
			PrevBudget:  t.Budget,
			PrevPlayers: append([]string(nil), t.Players...),
			Time:        evt.CreatedAt,
		})
		if len(e.sales) > maxSaleLog {
			e.sales = e.sales[len(e.sales)-maxSaleLog:]
		}
		p.Status = PlayerSold
		p.FinalBid = d.Amount
		p.Team = t.ID
		p.CurrentBid = 0
		p.BiddingTeam = 0
		t.Budget -= d.Amount
		t.Players = append(t.Players, p.ID)
		delete(e.history, p.ID)
		e.current = nil

	case event.PlayerUnsold:
		var d event.PlayerData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling unsold: %w", err)
		}
		p, ok := e.byID[d.PlayerID]
		if !ok {
			return fmt.Errorf("player %s not in roster", d.PlayerID)
		}
		p.Status = PlayerUnsold
		p.CurrentBid = 0
		p.BiddingTeam = 0
		delete(e.history, p.ID)
		e.current = nil

	case event.SaleReverted:
		if len(e.sales) == 0 {
			return fmt.Errorf("sale revert with empty sale log")
		}
		rec := e.sales[len(e.sales)-1]
		e.sales = e.sales[:len(e.sales)-1]
		if p := e.byID[rec.PlayerID]; p != nil {
			*p = rec.PrevPlayer
		}
		if t := e.team(rec.TeamID); t != nil {
			t.Budget = rec.PrevBudget
			t.Players = append([]string(nil), rec.PrevPlayers...)
		}

	case event.PlayerRetained:
		var d event.SaleData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling retention: %w", err)
		}
		p, ok := e.byID[d.PlayerID]
		if !ok {
			return fmt.Errorf("player %s not in roster", d.PlayerID)
		}
		t := e.team(d.TeamID)
		if t == nil {
			return fmt.Errorf("team %d not in roster", d.TeamID)
		}
		p.Status = PlayerRetained
		p.FinalBid = d.Amount
		p.Team = t.ID
		t.Budget -= d.Amount
		t.Players = append(t.Players, p.ID)

	case event.CaptainAssigned:
		var d event.CaptainAssignedData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling captain assignment: %w", err)
		}
		p, ok := e.byID[d.PlayerID]
		if !ok {
			return fmt.Errorf("player %s not in roster", d.PlayerID)
		}
		t := e.team(d.TeamID)
		if t == nil {
			return fmt.Errorf("team %d not in roster", d.TeamID)
		}
		p.Status = PlayerAssigned
		p.Team = t.ID
		p.FinalBid = 0
		t.Captain = p.ID
		t.Players = append(t.Players, p.ID)

	case event.FastTrackStarted:
		for _, p := range e.players {
			if p.Status == PlayerUnsold {
				p.Status = PlayerAvailable
				p.CurrentBid = 0
				p.BiddingTeam = 0
				p.FinalBid = 0
			}
		}
		e.status = StatusFastTrack

	case event.FastTrackEnded:
		var d event.StatusData
		if err := json.Unmarshal(evt.Data, &d); err != nil {
			return fmt.Errorf("unmarshalling fast-track end: %w", err)
		}
		e.status = Status(d.Status)
		e.clearStrayBids()
		e.current = nil

	default:
		// Unknown event types are skipped so old journals stay replayable.
	}
	return nil
}
