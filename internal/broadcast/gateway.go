// Package broadcast fans auction state changes out to connected spectators.
package broadcast

// Topics pushed to spectators after committed mutations.
const (
	TopicRosterChanged    = "roster:changed"
	TopicRosterCleared    = "roster:cleared"
	TopicTeamChanged      = "team:changed"
	TopicStatsChanged     = "stats:changed"
	TopicBidChanged       = "bid:changed"
	TopicStatusChanged    = "auction:status"
	TopicLotSold          = "lot:sold"
	TopicLotUnsold        = "lot:unsold"
	TopicBiddingCancelled = "bidding:cancelled"
	TopicBidReverted      = "bid:reverted"
	TopicSaleReverted     = "sale:reverted"
	TopicFastTrackStarted = "fasttrack:started"
	TopicFastTrackEnded   = "fasttrack:ended"
	TopicAuctionReset     = "auction:reset"
)

// Gateway delivers an event with its payload to every connected viewer.
// Delivery is fire-and-forget: no acknowledgment or cross-client ordering
// is guaranteed.
type Gateway interface {
	Emit(topic string, payload any)
}

// Nop is a Gateway that discards everything. Used in tests and replay.
type Nop struct{}

// Emit discards the event.
func (Nop) Emit(string, any) {}

// Multi fans every event out to several gateways in order.
type Multi []Gateway

// Emit forwards the event to each member gateway.
func (m Multi) Emit(topic string, payload any) {
	for _, g := range m {
		g.Emit(topic, payload)
	}
}
