package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)

// NewOpportunityStore creates a new OpportunityStore backed by the given
// connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppInsertQuery = `
	INSERT INTO opportunities (
		id, buy_venue, buy_market_id, buy_title, buy_price,
		sell_venue, sell_market_id, sell_title, sell_price,
		outcome, spread, expected_profit, expected_profit_pct,
		confidence, recommended_size, max_size,
		created_at, expires_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13,
		$14, $15, $16,
		$17, $18
	)
	ON CONFLICT (id) DO NOTHING`

// Insert stores a new opportunity. Re-inserting an existing ID is a no-op.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	_, err := s.pool.Exec(ctx, oppInsertQuery, oppInsertArgs(opp)...)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// InsertBatch stores a batch of opportunities in one transaction.
func (s *OpportunityStore) InsertBatch(ctx context.Context, opps []domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin insert batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, opp := range opps {
		if _, err := tx.Exec(ctx, oppInsertQuery, oppInsertArgs(opp)...); err != nil {
			return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit insert batch: %w", err)
	}
	return nil
}

func oppInsertArgs(opp domain.Opportunity) []any {
	return []any{
		opp.ID, opp.BuyVenue, opp.BuyListing.ID, opp.BuyListing.Title, opp.BuyPrice,
		opp.SellVenue, opp.SellListing.ID, opp.SellListing.Title, opp.SellPrice,
		opp.Outcome, opp.Spread, opp.ExpectedProfit, opp.ExpectedProfitPct,
		opp.Confidence, opp.RecommendedSize, opp.MaxSize,
		opp.CreatedAt, opp.ExpiresAt,
	}
}

// MarkPlanned flags an opportunity as picked up by the planner.
func (s *OpportunityStore) MarkPlanned(ctx context.Context, id string) error {
	const query = `
		UPDATE opportunities SET
			planned    = TRUE,
			planned_at = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres: mark opportunity planned %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by creation time.
// Listings are reconstructed from the stored identity columns; quote-time
// fields not persisted (volume, liquidity) come back zero.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `
		SELECT id, buy_venue, buy_market_id, buy_title, buy_price,
			sell_venue, sell_market_id, sell_title, sell_price,
			outcome, spread, expected_profit, expected_profit_pct,
			confidence, recommended_size, max_size,
			created_at, expires_at
		FROM opportunities ORDER BY created_at DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		if err := rows.Scan(
			&opp.ID, &opp.BuyVenue, &opp.BuyListing.ID, &opp.BuyListing.Title, &opp.BuyPrice,
			&opp.SellVenue, &opp.SellListing.ID, &opp.SellListing.Title, &opp.SellPrice,
			&opp.Outcome, &opp.Spread, &opp.ExpectedProfit, &opp.ExpectedProfitPct,
			&opp.Confidence, &opp.RecommendedSize, &opp.MaxSize,
			&opp.CreatedAt, &opp.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opp.BuyListing.VenueID = opp.BuyVenue
		opp.SellListing.VenueID = opp.SellVenue
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities rows: %w", err)
	}
	return opps, nil
}
