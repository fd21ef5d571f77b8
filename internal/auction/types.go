package auction

import "time"

// Status is the global auction lifecycle state.
type Status string

const (
	StatusStopped   Status = "stopped"
	StatusRunning   Status = "running"
	StatusFastTrack Status = "fast-track"
	StatusFinished  Status = "finished"
)

// PlayerStatus tracks where a player is in the auction.
type PlayerStatus string

const (
	PlayerAvailable PlayerStatus = "available"
	PlayerSold      PlayerStatus = "sold"
	PlayerUnsold    PlayerStatus = "unsold"
	PlayerRetained  PlayerStatus = "retained"
	PlayerAssigned  PlayerStatus = "assigned"
)

// Category buckets players by playing role. Captains bypass bidding entirely.
type Category string

const (
	CategoryCaptain      Category = "captain"
	CategoryBatter       Category = "batter"
	CategoryBowler       Category = "bowler"
	CategoryAllrounder   Category = "allrounder"
	CategoryWicketKeeper Category = "wicket-keeper"
	CategoryOther        Category = "other"
)

// Player is a roster entry.
type Player struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Role        string       `json:"role"`
	Category    Category     `json:"category"`
	Status      PlayerStatus `json:"status"`
	CurrentBid  int          `json:"current_bid"`
	FinalBid    int          `json:"final_bid"`
	Team        int          `json:"team"`         // owning team id, 0 = none
	BiddingTeam int          `json:"bidding_team"` // team leading the live bid, 0 = none
}

// Team is a franchise with a budget and a squad.
type Team struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Budget  int      `json:"budget"`
	Players []string `json:"players"`
	Captain string   `json:"captain"` // captain player id, "" = unassigned
}

// IncrementRule maps a bid threshold to the increment applied below it.
type IncrementRule struct {
	Threshold int `json:"threshold" yaml:"threshold"`
	Increment int `json:"increment" yaml:"increment"`
}

// Settings is the auction configuration.
type Settings struct {
	TeamCount         int             `json:"team_count" yaml:"team_count"`
	StartingBudget    int             `json:"starting_budget" yaml:"starting_budget"`
	MaxPlayersPerTeam int             `json:"max_players_per_team" yaml:"max_players_per_team"`
	BasePrice         int             `json:"base_price" yaml:"base_price"`
	BidIncrements     []IncrementRule `json:"bid_increments" yaml:"bid_increments"`
	EnableRetention   bool            `json:"enable_retention" yaml:"enable_retention"`
	RetentionsPerTeam int             `json:"retentions_per_team" yaml:"retentions_per_team"`
}

// CurrentBid is the single live lot. It exists iff a player is under the
// hammer; BiddingTeam == 0 means the base price is showing with no bids yet.
type CurrentBid struct {
	PlayerID    string `json:"player_id"`
	Amount      int    `json:"amount"`
	BiddingTeam int    `json:"bidding_team"`
}

// BidRecord is a prior leading bid, kept so the operator can step back
// through the live lot one bid at a time.
type BidRecord struct {
	TeamID   int    `json:"team_id"`
	TeamName string `json:"team_name"`
	Amount   int    `json:"amount"`
}

// SaleRecord captures a completed sale with enough pre-image state to
// reverse it. The engine keeps a bounded log of these.
type SaleRecord struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	TeamID      int       `json:"team_id"`
	TeamName    string    `json:"team_name"`
	Amount      int       `json:"amount"`
	PrevPlayer  Player    `json:"prev_player"`
	PrevBudget  int       `json:"prev_budget"`
	PrevPlayers []string  `json:"prev_players"`
	Time        time.Time `json:"time"`
}

// BidStat names a player and an amount for the stats projection.
type BidStat struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Amount     int    `json:"amount"`
}

// Stats is the derived sale summary, recomputed after every mutation that
// changes sale status.
type Stats struct {
	HighestBid  *BidStat `json:"highest_bid"`
	LowestBid   *BidStat `json:"lowest_bid"`
	TotalSold   int      `json:"total_sold"`
	TotalUnsold int      `json:"total_unsold"`
	AverageBid  float64  `json:"average_bid"`
}

// Snapshot is a read-only copy of the full auction state, served to new
// spectators and the state endpoint.
type Snapshot struct {
	Status     Status      `json:"status"`
	Settings   Settings    `json:"settings"`
	Players    []Player    `json:"players"`
	Teams      []Team      `json:"teams"`
	CurrentBid *CurrentBid `json:"current_bid"`
	Stats      Stats       `json:"stats"`
}

// PlayerInput is one roster upload row. Category is optional; when empty it
// is derived from the role text.
type PlayerInput struct {
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	Category Category `json:"category"`
}
