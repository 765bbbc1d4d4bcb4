// Package opportunity builds, screens, and final-gates priced cross-venue
// trade candidates from matched listing pairs.
package opportunity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/pricing"
)

// BuilderConfig holds the pricing parameters applied to every build.
type BuilderConfig struct {
	SlippageFactor  float64
	MinPositionSize float64
	MaxPositionSize float64
}

// Builder combines a matched pair, an outcome, and the pricing utilities into
// a fully computed Opportunity. Each build is a chain of pure transformations:
// price extraction, slippage, fees, sizing, profit.
type Builder struct {
	fees pricing.FeeTable
	cfg  BuilderConfig
}

// NewBuilder creates a Builder with the given fee table and config.
func NewBuilder(fees pricing.FeeTable, cfg BuilderConfig) *Builder {
	return &Builder{fees: fees, cfg: cfg}
}

// Build prices the given pair on one outcome side and returns the resulting
// Opportunity. It returns an error for configuration mistakes (unknown venue)
// and for construction invariant violations; both indicate misuse, not a
// routine non-match.
func (b *Builder) Build(pair domain.MatchedPair, outcome domain.Outcome, now time.Time) (domain.Opportunity, error) {
	info := pricing.ForOutcome(pair.A, pair.B, outcome)
	adjusted := pricing.ApplySlippage(info, b.cfg.SlippageFactor)

	buyFee, sellFee, err := b.fees.FeesForTrade(adjusted.BuyVenue, adjusted.SellVenue)
	if err != nil {
		return domain.Opportunity{}, fmt.Errorf("opportunity: build %s/%s: %w", pair.A.Key(), pair.B.Key(), err)
	}

	qty, maxQty := pricing.PositionSize(pair.A, pair.B, pricing.SizeBounds{
		Min: b.cfg.MinPositionSize,
		Max: b.cfg.MaxPositionSize,
	})

	// Slippage can push a thin raw spread through zero; the spread field is
	// floored there while the (negative) expected profit is kept so the
	// scorer drops the opportunity as routinely unprofitable.
	spread := adjusted.Spread()
	if spread < 0 {
		spread = 0
	}

	grossProfit := (adjusted.SellPrice - adjusted.BuyPrice) * qty
	totalFees := buyFee*adjusted.BuyPrice*qty + sellFee*adjusted.SellPrice*qty
	profit := grossProfit - totalFees

	capital := adjusted.BuyPrice * qty * (1 + buyFee)
	var profitPct float64
	if capital > 0 {
		profitPct = profit / capital
	}

	buyListing, sellListing := pair.A, pair.B
	if adjusted.BuyVenue != pair.A.VenueID {
		buyListing, sellListing = pair.B, pair.A
	}

	opp := domain.Opportunity{
		ID:                uuid.New().String(),
		BuyListing:        buyListing,
		SellListing:       sellListing,
		Outcome:           outcome,
		Spread:            spread,
		ExpectedProfit:    profit,
		ExpectedProfitPct: profitPct,
		Confidence:        pair.Confidence,
		RecommendedSize:   qty,
		MaxSize:           maxQty,
		BuyVenue:          adjusted.BuyVenue,
		BuyPrice:          adjusted.BuyPrice,
		SellVenue:         adjusted.SellVenue,
		SellPrice:         adjusted.SellPrice,
		CreatedAt:         now,
		ExpiresAt:         earliestExpiry(pair.A, pair.B),
	}

	if err := opp.Validate(); err != nil {
		return domain.Opportunity{}, err
	}
	return opp, nil
}

// earliestExpiry returns the earlier of the two listings' expiries, or nil
// when neither expires.
func earliestExpiry(a, b domain.Listing) *time.Time {
	switch {
	case a.ExpiresAt == nil:
		return b.ExpiresAt
	case b.ExpiresAt == nil:
		return a.ExpiresAt
	case a.ExpiresAt.Before(*b.ExpiresAt):
		return a.ExpiresAt
	default:
		return b.ExpiresAt
	}
}
