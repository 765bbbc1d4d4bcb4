package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// listingTTL keeps stale snapshots from outliving a few scan cycles.
const listingTTL = 5 * time.Minute

// ListingCache implements domain.ListingCache using one JSON-serialized
// snapshot key per venue.
//
// Key schema:
//
//	listings:{venue} - JSON array of the venue's latest listing snapshot
type ListingCache struct {
	rdb *redis.Client
}

var _ domain.ListingCache = (*ListingCache)(nil)

// NewListingCache creates a ListingCache backed by the given Client.
func NewListingCache(c *Client) *ListingCache {
	return &ListingCache{rdb: c.Underlying()}
}

func listingKey(venue domain.VenueID) string { return "listings:" + string(venue) }

// SetBatch replaces the cached snapshot for a venue.
func (lc *ListingCache) SetBatch(ctx context.Context, venue domain.VenueID, listings []domain.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("redis: marshal listings for %s: %w", venue, err)
	}

	if err := lc.rdb.Set(ctx, listingKey(venue), data, listingTTL).Err(); err != nil {
		return fmt.Errorf("redis: set listings for %s: %w", venue, err)
	}
	return nil
}

// GetBatch retrieves the cached snapshot for a venue.
// It returns domain.ErrNotFound when no snapshot exists.
func (lc *ListingCache) GetBatch(ctx context.Context, venue domain.VenueID) ([]domain.Listing, error) {
	data, err := lc.rdb.Get(ctx, listingKey(venue)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get listings for %s: %w", venue, err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("redis: unmarshal listings for %s: %w", venue, err)
	}
	return listings, nil
}
