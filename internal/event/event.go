package event

import (
	"encoding/json"
	"time"
)

// Type identifies an event kind.
type Type string

const (
	RosterLoaded  Type = "roster.loaded"
	RosterCleared Type = "roster.cleared"

	AuctionStarted  Type = "auction.started"
	AuctionStopped  Type = "auction.stopped"
	AuctionReset    Type = "auction.reset"
	AuctionFinished Type = "auction.finished"

	BiddingStarted   Type = "bidding.started"
	BidPlaced        Type = "bidding.bid_placed"
	BidReverted      Type = "bidding.bid_reverted"
	BiddingCancelled Type = "bidding.cancelled"

	PlayerSold      Type = "player.sold"
	PlayerUnsold    Type = "player.unsold"
	SaleReverted    Type = "player.sale_reverted"
	PlayerRetained  Type = "player.retained"
	CaptainAssigned Type = "player.captain_assigned"

	FastTrackStarted Type = "fasttrack.started"
	FastTrackEnded   Type = "fasttrack.ended"
)

// Event represents a single domain event in the auction journal.
type Event struct {
	ID          string          `json:"id" db:"id"`
	AggregateID string          `json:"aggregate_id" db:"aggregate_id"`
	Type        Type            `json:"type" db:"type"`
	Data        json.RawMessage `json:"data" db:"data"`
	Version     int             `json:"version" db:"version"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// RosterLoadedData is the payload for RosterLoaded events. It carries the
// full initial roster so the journal alone can rebuild the auction.
type RosterLoadedData struct {
	Players  json.RawMessage `json:"players"`
	Teams    json.RawMessage `json:"teams"`
	Settings json.RawMessage `json:"settings"`
}

// BiddingStartedData is the payload for BiddingStarted events.
type BiddingStartedData struct {
	PlayerID  string `json:"player_id"`
	BasePrice int    `json:"base_price"`
}

// BidData is the payload for BidPlaced and BidReverted events.
type BidData struct {
	PlayerID string `json:"player_id"`
	TeamID   int    `json:"team_id"`
	Amount   int    `json:"amount"`
}

// SaleData is the payload for PlayerSold, SaleReverted and PlayerRetained
// events.
type SaleData struct {
	PlayerID string `json:"player_id"`
	TeamID   int    `json:"team_id"`
	Amount   int    `json:"amount"`
}

// PlayerData is the payload for single-player events with no money attached.
type PlayerData struct {
	PlayerID string `json:"player_id"`
}

// CaptainAssignedData is the payload for CaptainAssigned events.
type CaptainAssignedData struct {
	PlayerID string `json:"player_id"`
	TeamID   int    `json:"team_id"`
}

// StatusData is the payload for auction lifecycle events.
type StatusData struct {
	Status string `json:"status"`
}
