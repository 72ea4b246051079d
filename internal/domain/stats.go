package domain

import "time"

// RunStats holds process-wide counters derived from lifecycle events.
type RunStats struct {
	TokensCreated    int // creation events observed
	TokensEvaluated  int // tokens admitted into a batch
	TotalTrades      int // completed entry/exit round trips
	ProfitableTrades int
	PnLSum           float64 // cumulative PnL percent across round trips
	TimeInTradeSum   time.Duration
}

// WinRatePct returns profitable trades as a percentage of all round trips.
func (s *RunStats) WinRatePct() float64 {
	if s.TotalTrades == 0 {
		return 0
	}
	return float64(s.ProfitableTrades) / float64(s.TotalTrades) * 100
}

// AvgTimeInTrade returns the mean holding time across round trips.
func (s *RunStats) AvgTimeInTrade() time.Duration {
	if s.TotalTrades == 0 {
		return 0
	}
	return s.TimeInTradeSum / time.Duration(s.TotalTrades)
}

// RunSummary is the persisted aggregate of one finished run.
// Corresponds to a row in the run_summaries table.
type RunSummary struct {
	RunID            string // PRIMARY KEY, deterministic hash
	Mode             string
	StartedAt        time.Time
	StoppedAt        time.Time
	TokensCreated    int
	TokensEvaluated  int
	TotalTrades      int
	ProfitableTrades int
	WinRatePct       float64
	PnLSum           float64
	AvgTimeInTradeS  float64 // seconds
	StartBalance     float64
	EndBalance       float64
}
