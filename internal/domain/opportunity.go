package domain

import (
	"fmt"
	"time"
)

// Opportunity is a fully priced cross-venue trade candidate. It is immutable
// once built; all derived fields are computed by the opportunity builder.
type Opportunity struct {
	ID          string
	BuyListing  Listing
	SellListing Listing
	Outcome     Outcome

	// Spread is the post-slippage price difference for the outcome.
	Spread float64
	// ExpectedProfit is the net currency profit after both venues' fees.
	ExpectedProfit float64
	// ExpectedProfitPct is profit relative to the capital required to enter
	// the buy leg (including the buy-side fee).
	ExpectedProfitPct float64

	Confidence      float64
	RecommendedSize float64
	MaxSize         float64

	BuyVenue  VenueID
	BuyPrice  float64
	SellVenue VenueID
	SellPrice float64

	CreatedAt time.Time
	ExpiresAt *time.Time // earliest of the two listings' expiries, nil if neither expires
}

// Validate checks the construction invariants. The builder calls this before
// returning an Opportunity; silently-wrong data never leaves construction.
func (o Opportunity) Validate() error {
	if o.Confidence < 0 || o.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.4f outside [0,1]", ErrInvalidOpp, o.Confidence)
	}
	if o.Spread < 0 {
		return fmt.Errorf("%w: negative spread %.4f", ErrInvalidOpp, o.Spread)
	}
	if o.RecommendedSize <= 0 {
		return fmt.Errorf("%w: non-positive recommended size %.2f", ErrInvalidOpp, o.RecommendedSize)
	}
	if o.RecommendedSize > o.MaxSize {
		return fmt.Errorf("%w: recommended size %.2f exceeds max %.2f", ErrInvalidOpp, o.RecommendedSize, o.MaxSize)
	}
	return nil
}

// Expired reports whether the opportunity's expiry has passed at now.
// Opportunities without an expiry never expire.
func (o Opportunity) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && !now.Before(*o.ExpiresAt)
}

// CapitalRequired returns the cash needed to enter the buy leg at the
// recommended size, including the buy-side fee.
func (o Opportunity) CapitalRequired(buyFeePct float64) float64 {
	return o.BuyPrice * o.RecommendedSize * (1 + buyFeePct)
}

// PlannedTrade is an Opportunity the portfolio planner has sized and accepted
// for execution. It is the terminal output of the pipeline.
type PlannedTrade struct {
	Opportunity Opportunity

	KellyFraction  float64
	RiskAdjustment float64
	WinProbability float64
	PositionValue  float64
	Theme          string
	PlannedAt      time.Time
}
