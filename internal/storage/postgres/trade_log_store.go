package postgres

import (
	"context"
	"fmt"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/storage"
)

// TradeLogStore implements storage.TradeLogStore using PostgreSQL.
type TradeLogStore struct {
	pool *Pool
}

// NewTradeLogStore creates a new TradeLogStore.
func NewTradeLogStore(pool *Pool) *TradeLogStore {
	return &TradeLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeLogStore = (*TradeLogStore)(nil)

// Insert adds a new entry. Returns ErrDuplicateKey if entry_id exists.
func (s *TradeLogStore) Insert(ctx context.Context, e *domain.TradeLogEntry) error {
	if e == nil || e.EntryID == "" || e.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_log (
			entry_id, run_id, mint, action, rule_index,
			token_amount, mcap, sol_value, balance_after, pnl_pct, executed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11
		)
	`

	_, err := s.pool.Exec(ctx, query,
		e.EntryID, e.RunID, e.Mint, string(e.Action), e.RuleIndex,
		e.TokenAmount, e.Mcap, e.SolValue, e.BalanceAfter, e.PnLPct, e.ExecutedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade log entry: %w", err)
	}
	return nil
}

// GetByRunID retrieves all entries for a run, ordered by executed_at ASC.
func (s *TradeLogStore) GetByRunID(ctx context.Context, runID string) ([]*domain.TradeLogEntry, error) {
	query := `
		SELECT entry_id, run_id, mint, action, rule_index,
		       token_amount, mcap, sol_value, balance_after, pnl_pct, executed_at
		FROM trade_log
		WHERE run_id = $1
		ORDER BY executed_at ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query trade log: %w", err)
	}
	defer rows.Close()

	var out []*domain.TradeLogEntry
	for rows.Next() {
		var e domain.TradeLogEntry
		var action string
		if err := rows.Scan(
			&e.EntryID, &e.RunID, &e.Mint, &action, &e.RuleIndex,
			&e.TokenAmount, &e.Mcap, &e.SolValue, &e.BalanceAfter, &e.PnLPct, &e.ExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("scan trade log entry: %w", err)
		}
		e.Action = domain.Action(action)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade log rows: %w", err)
	}

	return out, nil
}
