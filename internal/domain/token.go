package domain

import "time"

// TokenState aggregates per-token trade statistics and lifecycle flags.
// One instance exists per tracked mint; it is created on the first observed
// trade and mutated only from the engine's event loop.
type TokenState struct {
	Mint string // token mint address, immutable after creation

	// Trade counters
	Buys           int
	Sells          int
	TotalTrades    int
	BuySellRatio   float64 // 1 while no sells have been observed
	TotalBuyVolume float64 // cumulative SOL spent on buys
	AvgBuyAmount   float64
	TxPerSec       float64

	// Market value trail. McapLog and McapTimes grow in lockstep and are
	// never trimmed; the trend regression consumes the full history.
	CurrentMcap   float64
	McapLog       []float64
	McapTimes     []time.Time
	Slope         float64 // mcap units per second
	TrendStrength float64 // R² of the mcap regression, 0..1

	CreatorSold bool
	Pool        string // venue tag, "auto" until the feed reports one

	// Lifecycle flags. TradeEntered and Exhausted are mutually exclusive;
	// ExecutingOrder is the per-token lock against re-entrant decisions.
	TradeEntered   bool
	Exhausted      bool
	ExecutingOrder bool

	// Entry snapshot, populated once per holding period.
	EnteredAt   time.Time
	EntryMcap   float64
	EntryPrice  float64
	TokenAmount float64 // quantity acquired at entry

	LastTradeAt time.Time
}

// NewTokenState creates the initial state for a freshly tracked mint.
func NewTokenState(mint string) *TokenState {
	return &TokenState{
		Mint:         mint,
		BuySellRatio: 1,
		Pool:         "auto",
	}
}

// Holding reports whether the token currently carries an open position.
func (s *TokenState) Holding() bool {
	return s.TradeEntered && !s.Exhausted
}
