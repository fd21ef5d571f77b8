package auction

// CalculateStats projects sale statistics from a player list. Only genuine
// auction sales count: status sold, not a captain, and a positive final bid.
// Ties on highest/lowest go to the first player in roster order.
func CalculateStats(players []Player) Stats {
	var s Stats
	var total int

	for i := range players {
		p := &players[i]
		if p.Status == PlayerUnsold {
			s.TotalUnsold++
		}
		if p.Status != PlayerSold || p.Category == CategoryCaptain || p.FinalBid <= 0 {
			continue
		}
		s.TotalSold++
		total += p.FinalBid
		if s.HighestBid == nil || p.FinalBid > s.HighestBid.Amount {
			s.HighestBid = &BidStat{PlayerID: p.ID, PlayerName: p.Name, Amount: p.FinalBid}
		}
		if s.LowestBid == nil || p.FinalBid < s.LowestBid.Amount {
			s.LowestBid = &BidStat{PlayerID: p.ID, PlayerName: p.Name, Amount: p.FinalBid}
		}
	}

	if s.TotalSold > 0 {
		s.AverageBid = float64(total) / float64(s.TotalSold)
	}
	return s
}
