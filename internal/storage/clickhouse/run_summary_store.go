package clickhouse

import (
	"context"
	"fmt"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/storage"
)

// RunSummaryStore implements storage.RunSummaryStore using ClickHouse.
type RunSummaryStore struct {
	conn *Conn
}

// NewRunSummaryStore creates a new RunSummaryStore.
func NewRunSummaryStore(conn *Conn) *RunSummaryStore {
	return &RunSummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RunSummaryStore = (*RunSummaryStore)(nil)

// Insert adds a new summary. Returns ErrDuplicateKey if run_id exists.
// MergeTree does not enforce uniqueness, so the check is explicit.
func (s *RunSummaryStore) Insert(ctx context.Context, sum *domain.RunSummary) error {
	if sum == nil || sum.RunID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, sum.RunID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO run_summaries (
			run_id, mode, started_at, stopped_at,
			tokens_created, tokens_evaluated, total_trades, profitable_trades,
			win_rate_pct, pnl_sum, avg_time_in_trade_s,
			start_balance, end_balance
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?
		)
	`

	err = s.conn.Exec(ctx, query,
		sum.RunID, sum.Mode, sum.StartedAt, sum.StoppedAt,
		uint32(sum.TokensCreated), uint32(sum.TokensEvaluated),
		uint32(sum.TotalTrades), uint32(sum.ProfitableTrades),
		sum.WinRatePct, sum.PnLSum, sum.AvgTimeInTradeS,
		sum.StartBalance, sum.EndBalance,
	)
	if err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// GetByRunID retrieves a summary by run ID. Returns ErrNotFound if not exists.
func (s *RunSummaryStore) GetByRunID(ctx context.Context, runID string) (*domain.RunSummary, error) {
	query := `
		SELECT run_id, mode, started_at, stopped_at,
		       tokens_created, tokens_evaluated, total_trades, profitable_trades,
		       win_rate_pct, pnl_sum, avg_time_in_trade_s,
		       start_balance, end_balance
		FROM run_summaries
		WHERE run_id = ?
		LIMIT 1
	`

	var sum domain.RunSummary
	var created, evaluated, trades, profitable uint32

	row := s.conn.QueryRow(ctx, query, runID)
	err := row.Scan(
		&sum.RunID, &sum.Mode, &sum.StartedAt, &sum.StoppedAt,
		&created, &evaluated, &trades, &profitable,
		&sum.WinRatePct, &sum.PnLSum, &sum.AvgTimeInTradeS,
		&sum.StartBalance, &sum.EndBalance,
	)
	if err != nil {
		if isNoRowsError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query run summary: %w", err)
	}

	sum.TokensCreated = int(created)
	sum.TokensEvaluated = int(evaluated)
	sum.TotalTrades = int(trades)
	sum.ProfitableTrades = int(profitable)
	return &sum, nil
}

// exists reports whether a run_id is already stored.
func (s *RunSummaryStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, "SELECT count() FROM run_summaries WHERE run_id = ?", runID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
