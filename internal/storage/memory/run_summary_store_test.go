package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/storage"
)

func summary(runID string) *domain.RunSummary {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.RunSummary{
		RunID:            runID,
		Mode:             "simulated",
		StartedAt:        started,
		StoppedAt:        started.Add(time.Hour),
		TokensCreated:    150,
		TokensEvaluated:  40,
		TotalTrades:      12,
		ProfitableTrades: 7,
		WinRatePct:       58.33,
		PnLSum:           31.2,
		AvgTimeInTradeS:  95.4,
		StartBalance:     1,
		EndBalance:       1.31,
	}
}

func TestRunSummaryStoreInsertAndGet(t *testing.T) {
	s := NewRunSummaryStore()
	ctx := context.Background()

	if err := s.Insert(ctx, summary("run1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if got.TotalTrades != 12 || got.Mode != "simulated" {
		t.Errorf("unexpected summary: %+v", got)
	}
}

func TestRunSummaryStoreDuplicate(t *testing.T) {
	s := NewRunSummaryStore()
	ctx := context.Background()

	if err := s.Insert(ctx, summary("run1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, summary("run1")); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("second Insert = %v, want ErrDuplicateKey", err)
	}
}

func TestRunSummaryStoreNotFound(t *testing.T) {
	s := NewRunSummaryStore()

	if _, err := s.GetByRunID(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByRunID = %v, want ErrNotFound", err)
	}
}

func TestRunSummaryStoreInvalidInput(t *testing.T) {
	s := NewRunSummaryStore()

	if err := s.Insert(context.Background(), nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Insert(nil) = %v, want ErrInvalidInput", err)
	}
	if err := s.Insert(context.Background(), &domain.RunSummary{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Insert without run_id = %v, want ErrInvalidInput", err)
	}
}
