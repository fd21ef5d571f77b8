package auction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gavelpoint/auctioneer/internal/broadcast"
	"github.com/gavelpoint/auctioneer/internal/event"
)

func newID() string { return uuid.NewString() }

// DeriveCategory buckets a free-text role into a category.
func DeriveCategory(role string) Category {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "captain"):
		return CategoryCaptain
	case strings.Contains(r, "keeper") || strings.Contains(r, "wicket"):
		return CategoryWicketKeeper
	case strings.Contains(r, "all"):
		return CategoryAllrounder
	case strings.Contains(r, "bowl"):
		return CategoryBowler
	case strings.Contains(r, "bat"):
		return CategoryBatter
	default:
		return CategoryOther
	}
}

// LoadRoster replaces the entire roster: players get fresh ids and start
// available, teams are rebuilt with the configured starting budget, and all
// bidding state from any previous auction is discarded.
func (e *Engine) LoadRoster(ctx context.Context, inputs []PlayerInput, teamNames []string) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.LoadRoster",
		trace.WithAttributes(attribute.Int("players", len(inputs))),
	)
	defer span.End()

	if len(inputs) == 0 {
		return Snapshot{}, fmt.Errorf("%w: roster is empty", ErrValidation)
	}
	for i, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return Snapshot{}, fmt.Errorf("%w: player %d has no name", ErrValidation, i+1)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.players = make([]*Player, 0, len(inputs))
	e.byID = make(map[string]*Player, len(inputs))
	for _, in := range inputs {
		cat := in.Category
		if cat == "" {
			cat = DeriveCategory(in.Role)
		}
		p := &Player{
			ID:       newID(),
			Name:     strings.TrimSpace(in.Name),
			Role:     in.Role,
			Category: cat,
			Status:   PlayerAvailable,
		}
		e.players = append(e.players, p)
		e.byID[p.ID] = p
	}

	e.teams = make([]*Team, 0, e.settings.TeamCount)
	for i := 1; i <= e.settings.TeamCount; i++ {
		name := fmt.Sprintf("Team %d", i)
		if i-1 < len(teamNames) && strings.TrimSpace(teamNames[i-1]) != "" {
			name = strings.TrimSpace(teamNames[i-1])
		}
		e.teams = append(e.teams, &Team{ID: i, Name: name, Budget: e.settings.StartingBudget})
	}

	e.current = nil
	e.sales = nil
	e.history = make(map[string][]BidRecord)
	e.status = StatusStopped
	e.recomputeStats()

	playersJSON, _ := json.Marshal(e.snapshotLocked().Players)
	teamsJSON, _ := json.Marshal(e.snapshotLocked().Teams)
	settingsJSON, _ := json.Marshal(e.settings)
	e.appendEvent(ctx, event.RosterLoaded, event.RosterLoadedData{
		Players:  playersJSON,
		Teams:    teamsJSON,
		Settings: settingsJSON,
	})

	snap := e.snapshotLocked()
	e.gateway.Emit(broadcast.TopicRosterChanged, snap)
	e.logger.InfoContext(ctx, "roster loaded",
		slog.Int("players", len(e.players)),
		slog.Int("teams", len(e.teams)),
	)
	return snap, nil
}

// ClearRoster drops all players, teams and auction state.
func (e *Engine) ClearRoster(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.ClearRoster")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.players = nil
	e.byID = make(map[string]*Player)
	e.teams = nil
	e.current = nil
	e.sales = nil
	e.history = make(map[string][]BidRecord)
	e.status = StatusStopped
	e.stats = Stats{}

	e.appendEvent(ctx, event.RosterCleared, struct{}{})
	e.gateway.Emit(broadcast.TopicRosterCleared, nil)
	e.logger.InfoContext(ctx, "roster cleared")
	return nil
}

// AssignCaptain places a captain directly on a team, bypassing bidding.
func (e *Engine) AssignCaptain(ctx context.Context, teamID int, playerID string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.AssignCaptain",
		trace.WithAttributes(
			attribute.Int("team.id", teamID),
			attribute.String("player.id", playerID),
		),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.byID[playerID]
	if !ok {
		return fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}
	t := e.team(teamID)
	if t == nil {
		return fmt.Errorf("%w: unknown team %d", ErrValidation, teamID)
	}
	if p.Category != CategoryCaptain {
		return fmt.Errorf("%w: %s is not a captain", ErrInvalidState, p.Name)
	}
	if p.Status != PlayerAvailable {
		return fmt.Errorf("%w: %s is %s", ErrInvalidState, p.Name, p.Status)
	}
	if t.Captain != "" {
		return fmt.Errorf("%w: team %s already has a captain", ErrInvalidState, t.Name)
	}

	p.Status = PlayerAssigned
	p.Team = t.ID
	p.FinalBid = 0
	t.Captain = p.ID
	t.Players = append(t.Players, p.ID)

	e.appendEvent(ctx, event.CaptainAssigned, event.CaptainAssignedData{PlayerID: p.ID, TeamID: t.ID})
	e.gateway.Emit(broadcast.TopicTeamChanged, *t)
	e.gateway.Emit(broadcast.TopicRosterChanged, nil)
	e.logger.InfoContext(ctx, "captain assigned",
		slog.String("player_id", p.ID),
		slog.Int("team_id", t.ID),
	)
	return nil
}

// RetainPlayer assigns a player to a team at a fixed price outside the
// bidding flow. Retention must be enabled in settings and each team has a
// retention quota.
func (e *Engine) RetainPlayer(ctx context.Context, teamID int, playerID string, price int) error {
	ctx, span := e.tracer.Start(ctx, "Engine.RetainPlayer",
		trace.WithAttributes(
			attribute.Int("team.id", teamID),
			attribute.String("player.id", playerID),
			attribute.Int("price", price),
		),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.settings.EnableRetention {
		return fmt.Errorf("%w: retention is disabled", ErrInvalidState)
	}
	if price < 0 {
		return fmt.Errorf("%w: retention price cannot be negative", ErrValidation)
	}
	p, ok := e.byID[playerID]
	if !ok {
		return fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}
	t := e.team(teamID)
	if t == nil {
		return fmt.Errorf("%w: unknown team %d", ErrValidation, teamID)
	}
	if p.Status != PlayerAvailable || p.Category == CategoryCaptain {
		return fmt.Errorf("%w: %s cannot be retained", ErrInvalidState, p.Name)
	}
	if e.retainedCount(t) >= e.settings.RetentionsPerTeam {
		return fmt.Errorf("%w: team %s has used all %d retentions", ErrInvalidState, t.Name, e.settings.RetentionsPerTeam)
	}
	if e.squadCount(t)+e.retainedCount(t) >= e.settings.MaxPlayersPerTeam {
		return fmt.Errorf("%w: team %s has reached the maximum of %d players", ErrTeamFull, t.Name, e.settings.MaxPlayersPerTeam)
	}
	if t.Budget < price {
		return fmt.Errorf("%w: team %s has %d, retention requires %d", ErrInsufficientBudget, t.Name, t.Budget, price)
	}

	p.Status = PlayerRetained
	p.FinalBid = price
	p.Team = t.ID
	t.Budget -= price
	t.Players = append(t.Players, p.ID)
	e.recomputeStats()

	e.appendEvent(ctx, event.PlayerRetained, event.SaleData{PlayerID: p.ID, TeamID: t.ID, Amount: price})
	e.gateway.Emit(broadcast.TopicTeamChanged, *t)
	e.gateway.Emit(broadcast.TopicRosterChanged, nil)
	e.logger.InfoContext(ctx, "player retained",
		slog.String("player_id", p.ID),
		slog.Int("team_id", t.ID),
		slog.Int("price", price),
	)
	return nil
}

func (e *Engine) retainedCount(t *Team) int {
	n := 0
	for _, id := range t.Players {
		if p, ok := e.byID[id]; ok && p.Status == PlayerRetained {
			n++
		}
	}
	return n
}
