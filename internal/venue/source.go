// Package venue holds cross-venue source helpers shared by the concrete
// venue clients.
package venue

import (
	"context"
	"fmt"
	"time"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// StaticPortfolioSource synthesizes a portfolio snapshot from configured cash
// balances plus the open positions implied by recently planned trades. It
// stands in for a live account feed; cash is not decremented across cycles.
type StaticPortfolioSource struct {
	cash   map[domain.VenueID]float64
	trades domain.PlannedTradeStore
	window time.Duration
}

var _ domain.PortfolioSource = (*StaticPortfolioSource)(nil)

// NewStaticPortfolioSource creates a source over the given cash balances.
// trades may be nil, in which case snapshots carry no open positions.
// window bounds how far back planned trades count as open.
func NewStaticPortfolioSource(cash map[domain.VenueID]float64, trades domain.PlannedTradeStore, window time.Duration) *StaticPortfolioSource {
	copied := make(map[domain.VenueID]float64, len(cash))
	for venue, amount := range cash {
		copied[venue] = amount
	}
	return &StaticPortfolioSource{cash: copied, trades: trades, window: window}
}

// Snapshot returns the current portfolio view.
func (s *StaticPortfolioSource) Snapshot(ctx context.Context) (domain.PortfolioSnapshot, error) {
	snap := domain.PortfolioSnapshot{
		CashByVenue: make(map[domain.VenueID]float64, len(s.cash)),
	}
	for venue, amount := range s.cash {
		snap.CashByVenue[venue] = amount
		snap.TotalValue += amount
	}

	if s.trades == nil {
		return snap, nil
	}

	since := time.Now().Add(-s.window)
	planned, err := s.trades.ListSince(ctx, since)
	if err != nil {
		return domain.PortfolioSnapshot{}, fmt.Errorf("venue: portfolio snapshot: %w", err)
	}
	for _, t := range planned {
		opp := t.Opportunity
		shares := 0.0
		if opp.BuyPrice > 0 {
			shares = t.PositionValue / opp.BuyPrice
		}
		snap.Positions = append(snap.Positions, domain.PortfolioPosition{
			VenueID:      opp.BuyVenue,
			MarketKey:    opp.BuyListing.Key(),
			Outcome:      opp.Outcome,
			Shares:       shares,
			AvgPrice:     opp.BuyPrice,
			CurrentValue: t.PositionValue,
		})
		snap.TotalValue += t.PositionValue
	}

	return snap, nil
}
