package reporting

import (
	"time"

	"gem-sniper/internal/rules"
)

// Report is the end-of-run summary built from the run aggregates, the rule
// transcript and the persisted trade log.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Mode        string

	// The strategy the run was executed with.
	EnterRules []rules.RuleSet
	ExitRules  []rules.RuleSet

	Statistics Statistics

	// Rule usage (winning rule-set per entry/exit, plus combos)
	EnterRuleUsage []RuleUsageRow
	ExitRuleUsage  []RuleUsageRow
	ComboUsage     []ComboUsageRow

	// Trades in execution order, from the trade log.
	Trades []TradeRow
}

// Statistics mirrors the aggregate counters of one run.
type Statistics struct {
	Uptime           time.Duration
	TokensCreated    int
	TokensEvaluated  int
	TotalTrades      int
	ProfitableTrades int
	WinRatePct       float64
	AvgPnLPct        float64 // mean PnL percent per round trip
	PnLSum           float64
	AvgTimeInTrade   time.Duration
	StartBalance     float64
	EndBalance       float64
	BalancePnLPct    float64 // (end - start) / start * 100
}

// RuleUsageRow counts how often one rule-set was the winning one.
type RuleUsageRow struct {
	RuleIndex int // 1-based; exits may carry a reserved index
	Count     int
	SharePct  float64
}

// ComboUsageRow counts entry/exit rule pairings across round trips.
type ComboUsageRow struct {
	EnterRule int
	ExitRule  int
	Count     int
	SharePct  float64
}

// TradeRow is one executed action as it appears in the report tables.
type TradeRow struct {
	Mint         string
	Action       string
	RuleIndex    int
	TokenAmount  float64
	Mcap         float64
	SolValue     float64
	BalanceAfter float64
	PnLPct       *float64 // sells only
	ExecutedAt   time.Time
}
