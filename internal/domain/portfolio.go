package domain

// PortfolioPosition is one open position as reported by the portfolio source.
type PortfolioPosition struct {
	VenueID      VenueID
	MarketKey    string // venue-qualified market key, see Listing.Key
	Outcome      Outcome
	Shares       float64
	AvgPrice     float64
	CurrentValue float64 // mark-to-market
}

// PortfolioSnapshot is a read-only view of the account state across venues.
// The pipeline only reads it to compute risk and sizing; it never mutates it.
type PortfolioSnapshot struct {
	CashByVenue map[VenueID]float64
	Positions   []PortfolioPosition
	TotalValue  float64
}

// Cash returns the available cash balance on the given venue.
func (p PortfolioSnapshot) Cash(venue VenueID) float64 {
	return p.CashByVenue[venue]
}

// TotalCash sums cash across all venues.
func (p PortfolioSnapshot) TotalCash() float64 {
	var total float64
	for _, c := range p.CashByVenue {
		total += c
	}
	return total
}

// VenueExposure returns the mark-to-market value held on the given venue.
func (p PortfolioSnapshot) VenueExposure(venue VenueID) float64 {
	var total float64
	for _, pos := range p.Positions {
		if pos.VenueID == venue {
			total += pos.CurrentValue
		}
	}
	return total
}

// HoldsMarket reports whether any open position is on the given market key.
func (p PortfolioSnapshot) HoldsMarket(key string) bool {
	for _, pos := range p.Positions {
		if pos.MarketKey == key {
			return true
		}
	}
	return false
}
