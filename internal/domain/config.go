package domain

import (
	"fmt"
	"time"
)

// Mode selects how entry/exit actions are finalized.
type Mode string

const (
	// ModeSimulated finalizes trades through the execution latency model.
	ModeSimulated Mode = "simulated"
	// ModeLive submits trades to the trading API collaborator.
	ModeLive Mode = "live"
)

// Config is the read-only configuration snapshot for one run.
type Config struct {
	Balance         float64       // starting capital in SOL
	BuySize         float64       // position size in SOL
	MaxSlippagePct  float64       // slippage tolerance in percent
	PriorityFee     float64       // priority fee in SOL
	BatchCapacity   int           // max concurrently tracked tokens
	InactivityLimit time.Duration // stale position threshold
	Mode            Mode
}

// Validate checks the configuration surface before a run starts.
func (c *Config) Validate() error {
	if c.BuySize <= 0 {
		return fmt.Errorf("buy size must be greater than 0, got %v", c.BuySize)
	}
	if c.Balance < c.BuySize {
		return fmt.Errorf("balance %v is below buy size %v", c.Balance, c.BuySize)
	}
	if c.PriorityFee < 0 {
		return fmt.Errorf("priority fee must not be negative, got %v", c.PriorityFee)
	}
	if c.BatchCapacity <= 0 {
		return fmt.Errorf("batch capacity must be greater than 0, got %d", c.BatchCapacity)
	}
	if c.InactivityLimit <= 0 {
		return fmt.Errorf("inactivity limit must be greater than 0, got %v", c.InactivityLimit)
	}
	switch c.Mode {
	case ModeSimulated, ModeLive:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}
