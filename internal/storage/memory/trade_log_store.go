// Package memory provides in-memory storage implementations used by
// simulated runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/storage"
)

// TradeLogStore is an in-memory implementation of storage.TradeLogStore.
type TradeLogStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeLogEntry // keyed by entry_id
}

// NewTradeLogStore creates a new in-memory trade log store.
func NewTradeLogStore() *TradeLogStore {
	return &TradeLogStore{
		data: make(map[string]*domain.TradeLogEntry),
	}
}

// Compile-time interface check.
var _ storage.TradeLogStore = (*TradeLogStore)(nil)

// Insert adds a new entry. Returns ErrDuplicateKey if entry_id exists.
func (s *TradeLogStore) Insert(_ context.Context, e *domain.TradeLogEntry) error {
	if e == nil || e.EntryID == "" || e.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EntryID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *e
	if e.PnLPct != nil {
		v := *e.PnLPct
		cp.PnLPct = &v
	}
	s.data[e.EntryID] = &cp
	return nil
}

// GetByRunID retrieves all entries for a run, ordered by executed_at ASC.
func (s *TradeLogStore) GetByRunID(_ context.Context, runID string) ([]*domain.TradeLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TradeLogEntry
	for _, e := range s.data {
		if e.RunID != runID {
			continue
		}
		cp := *e
		if e.PnLPct != nil {
			v := *e.PnLPct
			cp.PnLPct = &v
		}
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ExecutedAt.Before(out[j].ExecutedAt)
	})
	return out, nil
}
