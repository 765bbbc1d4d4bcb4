package domain

import (
	"context"
	"time"
)

// Pub/sub channels and durable streams used by the pipeline.
const (
	ChannelOpportunities = "arb:opportunities"
	ChannelTrades        = "arb:trades"
	StreamCycles         = "arb:cycles"
)

// ListingCache stores the most recent listing snapshot per venue so the
// monitoring API and the next cycle's diagnostics can read what the engine saw.
type ListingCache interface {
	SetBatch(ctx context.Context, venue VenueID, listings []Listing) error
	GetBatch(ctx context.Context, venue VenueID) ([]Listing, error)
}

// StreamMessage represents a single entry from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub fan-out and durable streams for pipeline events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// RateLimiter limits request rates per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
