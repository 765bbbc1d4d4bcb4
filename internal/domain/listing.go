package domain

import "time"

// VenueID identifies a trading venue.
type VenueID string

const (
	VenuePolymarket VenueID = "polymarket"
	VenueKalshi     VenueID = "kalshi"
)

// Outcome is one of the two complementary sides of a binary market.
type Outcome string

const (
	OutcomeYes Outcome = "yes"
	OutcomeNo  Outcome = "no"
)

// Opposite returns the complementary outcome.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeYes {
		return OutcomeNo
	}
	return OutcomeYes
}

// Listing is an immutable snapshot of one binary market as listed on a venue.
// YES and NO prices are complementary probabilities summing to roughly 1.
type Listing struct {
	VenueID   VenueID
	ID        string
	Title     string
	YesPrice  float64
	NoPrice   float64
	Volume24h float64
	Liquidity float64
	Active    bool
	Category  string     // optional; empty when the venue does not classify
	ExpiresAt *time.Time // optional
}

// PriceFor returns the listing's price for the given outcome side.
func (l Listing) PriceFor(outcome Outcome) float64 {
	if outcome == OutcomeYes {
		return l.YesPrice
	}
	return l.NoPrice
}

// Key returns a venue-qualified market key, e.g. "polymarket:0x12ab".
func (l Listing) Key() string {
	return string(l.VenueID) + ":" + l.ID
}
