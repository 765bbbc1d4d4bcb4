// Package pricing turns a matched pair of listings into buy/sell prices with
// venue fees, slippage, and liquidity-bounded position sizing applied.
package pricing

import (
	"fmt"
	"math"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// FeeTable maps venues to their fee percentage (e.g. 0.01 for 1%).
// Unknown venues are a configuration error, raised at the point of lookup.
type FeeTable struct {
	fees map[domain.VenueID]float64
}

// NewFeeTable creates a FeeTable from a venue-to-fee-percentage map.
func NewFeeTable(fees map[domain.VenueID]float64) FeeTable {
	table := make(map[domain.VenueID]float64, len(fees))
	for venue, pct := range fees {
		table[venue] = pct
	}
	return FeeTable{fees: table}
}

// Fee returns the fee percentage for a single venue.
func (t FeeTable) Fee(venue domain.VenueID) (float64, error) {
	pct, ok := t.fees[venue]
	if !ok {
		return 0, fmt.Errorf("pricing: %w: %s", domain.ErrUnknownVenue, venue)
	}
	return pct, nil
}

// FeesForTrade returns the buy-side and sell-side fee percentages for a trade
// spanning two venues.
func (t FeeTable) FeesForTrade(buyVenue, sellVenue domain.VenueID) (buyFee, sellFee float64, err error) {
	if buyFee, err = t.Fee(buyVenue); err != nil {
		return 0, 0, err
	}
	if sellFee, err = t.Fee(sellVenue); err != nil {
		return 0, 0, err
	}
	return buyFee, sellFee, nil
}

// PriceInfo is the directed price view for one outcome across a matched pair:
// buy on the cheaper venue, sell on the more expensive one.
type PriceInfo struct {
	BuyVenue  domain.VenueID
	BuyPrice  float64
	SellVenue domain.VenueID
	SellPrice float64
}

// Spread is the non-negative price difference between the two legs.
func (p PriceInfo) Spread() float64 {
	return p.SellPrice - p.BuyPrice
}

// ForOutcome determines trade direction for the given outcome: the listing
// with the lower price is the buy leg, the other is the sell leg. When prices
// are equal the first listing is the buy leg.
func ForOutcome(a, b domain.Listing, outcome domain.Outcome) PriceInfo {
	pa := a.PriceFor(outcome)
	pb := b.PriceFor(outcome)
	if pa <= pb {
		return PriceInfo{BuyVenue: a.VenueID, BuyPrice: pa, SellVenue: b.VenueID, SellPrice: pb}
	}
	return PriceInfo{BuyVenue: b.VenueID, BuyPrice: pb, SellVenue: a.VenueID, SellPrice: pa}
}

// ApplySlippage adjusts both legs conservatively before profit estimation:
// the buy price up and the sell price down by the same factor. This is a
// deliberate non-order-book-aware approximation of execution friction.
func ApplySlippage(info PriceInfo, factor float64) PriceInfo {
	info.BuyPrice *= 1 + factor
	info.SellPrice *= 1 - factor
	return info
}

// SizeBounds holds the global position size limits in units.
type SizeBounds struct {
	Min float64
	Max float64
}

// PositionSize derives the recommended and maximum sizes from the matched
// pair's liquidity: maximum is the less liquid side capped at the global
// maximum; recommended defaults to that cap but never below the global
// minimum.
func PositionSize(a, b domain.Listing, bounds SizeBounds) (recommended, maximum float64) {
	maximum = math.Min(a.Liquidity, b.Liquidity)
	if maximum > bounds.Max {
		maximum = bounds.Max
	}
	recommended = maximum
	if recommended < bounds.Min {
		recommended = bounds.Min
	}
	return recommended, maximum
}
