package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

// PlannedTradeStore implements domain.PlannedTradeStore using PostgreSQL.
// The full opportunity is stored as JSONB alongside the planner columns so a
// trade row round-trips without a join.
type PlannedTradeStore struct {
	pool *pgxpool.Pool
}

var _ domain.PlannedTradeStore = (*PlannedTradeStore)(nil)

// NewPlannedTradeStore creates a new PlannedTradeStore backed by the given
// connection pool.
func NewPlannedTradeStore(pool *pgxpool.Pool) *PlannedTradeStore {
	return &PlannedTradeStore{pool: pool}
}

// Insert stores a new planned trade.
func (s *PlannedTradeStore) Insert(ctx context.Context, trade domain.PlannedTrade) error {
	const query = `
		INSERT INTO planned_trades (
			opportunity_id, opportunity,
			kelly_fraction, risk_adjustment, win_probability,
			position_value, theme, planned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	oppJSON, err := json.Marshal(trade.Opportunity)
	if err != nil {
		return fmt.Errorf("postgres: marshal opportunity %s: %w", trade.Opportunity.ID, err)
	}

	_, err = s.pool.Exec(ctx, query,
		trade.Opportunity.ID, oppJSON,
		trade.KellyFraction, trade.RiskAdjustment, trade.WinProbability,
		trade.PositionValue, trade.Theme, trade.PlannedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert planned trade %s: %w", trade.Opportunity.ID, err)
	}
	return nil
}

// ListRecent returns the most recent planned trades ordered by planning time.
func (s *PlannedTradeStore) ListRecent(ctx context.Context, limit int) ([]domain.PlannedTrade, error) {
	query := `
		SELECT opportunity, kelly_fraction, risk_adjustment, win_probability,
			position_value, theme, planned_at
		FROM planned_trades ORDER BY planned_at DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent planned trades: %w", err)
	}
	defer rows.Close()

	return scanPlannedTrades(rows)
}

// ListSince returns planned trades at or after the given time, oldest first.
func (s *PlannedTradeStore) ListSince(ctx context.Context, since time.Time) ([]domain.PlannedTrade, error) {
	const query = `
		SELECT opportunity, kelly_fraction, risk_adjustment, win_probability,
			position_value, theme, planned_at
		FROM planned_trades
		WHERE planned_at >= $1
		ORDER BY planned_at ASC`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("postgres: list planned trades since %s: %w", since, err)
	}
	defer rows.Close()

	return scanPlannedTrades(rows)
}

func scanPlannedTrades(rows pgx.Rows) ([]domain.PlannedTrade, error) {
	var trades []domain.PlannedTrade
	for rows.Next() {
		var trade domain.PlannedTrade
		var oppJSON []byte
		if err := rows.Scan(
			&oppJSON, &trade.KellyFraction, &trade.RiskAdjustment, &trade.WinProbability,
			&trade.PositionValue, &trade.Theme, &trade.PlannedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan planned trade: %w", err)
		}
		if err := json.Unmarshal(oppJSON, &trade.Opportunity); err != nil {
			return nil, fmt.Errorf("postgres: decode planned trade opportunity: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: planned trade rows: %w", err)
	}
	return trades, nil
}
