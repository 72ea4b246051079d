package memory

import (
	"context"
	"sync"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/storage"
)

// RunSummaryStore is an in-memory implementation of storage.RunSummaryStore.
type RunSummaryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunSummary // keyed by run_id
}

// NewRunSummaryStore creates a new in-memory run summary store.
func NewRunSummaryStore() *RunSummaryStore {
	return &RunSummaryStore{
		data: make(map[string]*domain.RunSummary),
	}
}

// Compile-time interface check.
var _ storage.RunSummaryStore = (*RunSummaryStore)(nil)

// Insert adds a new summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunSummaryStore) Insert(_ context.Context, sum *domain.RunSummary) error {
	if sum == nil || sum.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sum.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *sum
	s.data[sum.RunID] = &cp
	return nil
}

// GetByRunID retrieves a summary by run ID. Returns ErrNotFound if not exists.
func (s *RunSummaryStore) GetByRunID(_ context.Context, runID string) (*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *sum
	return &cp, nil
}
