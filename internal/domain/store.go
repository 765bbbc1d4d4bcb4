package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// OpportunityStore persists detected opportunities for monitoring and replay.
type OpportunityStore interface {
	Insert(ctx context.Context, opp Opportunity) error
	InsertBatch(ctx context.Context, opps []Opportunity) error
	MarkPlanned(ctx context.Context, id string) error
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
}

// PlannedTradeStore persists the planner's output for the executor and for
// building the open-position view fed back into the next cycle's risk checks.
type PlannedTradeStore interface {
	Insert(ctx context.Context, trade PlannedTrade) error
	ListRecent(ctx context.Context, limit int) ([]PlannedTrade, error)
	ListSince(ctx context.Context, since time.Time) ([]PlannedTrade, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
