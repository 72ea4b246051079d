// Package storage defines persistence interfaces for trade history and run
// aggregates, with in-memory, PostgreSQL and ClickHouse implementations in
// subpackages.
package storage

import (
	"context"

	"gem-sniper/internal/domain"
)

// TradeLogStore provides access to trade_log storage.
type TradeLogStore interface {
	// Insert adds a new trade log entry. Returns ErrDuplicateKey if entry_id exists.
	Insert(ctx context.Context, e *domain.TradeLogEntry) error

	// GetByRunID retrieves all entries for a run, ordered by executed_at ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.TradeLogEntry, error)
}

// RunSummaryStore provides access to run_summaries storage.
type RunSummaryStore interface {
	// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, s *domain.RunSummary) error

	// GetByRunID retrieves a summary by run ID. Returns ErrNotFound if not exists.
	GetByRunID(ctx context.Context, runID string) (*domain.RunSummary, error)
}
