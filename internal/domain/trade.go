package domain

import "time"

// Action is the direction of an executed order.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Reserved exit rule indices for exits not triggered by the rule evaluator.
const (
	// ExitRuleShutdown marks positions liquidated during run teardown.
	ExitRuleShutdown = 100
	// ExitRuleStale marks positions force-exited by the inactivity sweeper.
	ExitRuleStale = 101
)

// TradeLogEntry records one executed entry or exit.
// Corresponds to a row in the trade_log table.
type TradeLogEntry struct {
	EntryID      string // PRIMARY KEY, deterministic hash
	RunID        string
	Mint         string
	Action       Action
	RuleIndex    int     // 1-based winning rule-set, or a reserved exit index
	TokenAmount  float64 // quantity bought or sold
	Mcap         float64 // market cap at execution
	SolValue     float64 // SOL spent on a buy, proceeds on a sell
	BalanceAfter float64
	PnLPct       *float64 // sells only
	ExecutedAt   time.Time
}

// TranscriptEntry pairs the entry and exit rule indices for one token.
// Written once on entry, updated once on exit; reporting only.
type TranscriptEntry struct {
	EntryRule int
	ExitRule  int // 0 while the position is still open
}
