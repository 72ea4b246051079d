// Package wallet tracks the SOL capital a run is allowed to spend.
package wallet

import (
	"context"
	"fmt"
	"sync"

	"gem-sniper/internal/solana"
)

// Ledger tracks the working balance. The engine debits and credits it only
// after an order finalizes, so the balance always reflects settled capital.
type Ledger interface {
	// Balance returns the current balance in SOL.
	Balance() float64
	// SetBalance replaces the balance.
	SetBalance(v float64)
}

// MemoryLedger is an in-memory Ledger for simulated runs.
type MemoryLedger struct {
	mu      sync.Mutex
	balance float64
}

// NewMemoryLedger creates a ledger seeded with the given balance.
func NewMemoryLedger(balance float64) *MemoryLedger {
	return &MemoryLedger{balance: balance}
}

// Balance returns the current balance in SOL.
func (l *MemoryLedger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// SetBalance replaces the balance.
func (l *MemoryLedger) SetBalance(v float64) {
	l.mu.Lock()
	l.balance = v
	l.mu.Unlock()
}

// Ensure MemoryLedger implements Ledger.
var _ Ledger = (*MemoryLedger)(nil)

// SeedFromRPC reads the on-chain balance of pubkey and returns a ledger
// initialized with it. Live runs start from real capital instead of a
// configured number.
func SeedFromRPC(ctx context.Context, client *solana.HTTPClient, pubkey string) (*MemoryLedger, error) {
	balance, err := client.GetBalance(ctx, pubkey)
	if err != nil {
		return nil, fmt.Errorf("seed balance for %s: %w", pubkey, err)
	}
	return NewMemoryLedger(balance), nil
}
