package domain

import "context"

// ListingSource supplies one venue's listing snapshot for a cycle. The result
// is treated as complete for that cycle; listings below minVolume are omitted.
type ListingSource interface {
	Venue() VenueID
	FetchListings(ctx context.Context, minVolume float64) ([]Listing, error)
}

// PortfolioSource supplies the current portfolio snapshot.
type PortfolioSource interface {
	Snapshot(ctx context.Context) (PortfolioSnapshot, error)
}
