package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/rules"
	"gem-sniper/internal/storage"
)

// Generator produces run reports.
type Generator struct {
	tradeLog storage.TradeLogStore // optional
	now      func() time.Time      // Injectable clock for deterministic output
}

// NewGenerator creates a report generator. The trade log store may be nil,
// in which case the report carries no trade table.
func NewGenerator(tradeLog storage.TradeLogStore) *Generator {
	return &Generator{
		tradeLog: tradeLog,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report for one finished run.
func (g *Generator) Generate(ctx context.Context, summary *domain.RunSummary, transcript map[string]domain.TranscriptEntry, enter, exit *rules.Compiled) (*Report, error) {
	if summary == nil {
		return nil, fmt.Errorf("reporting: summary is required")
	}

	enterUsage, exitUsage, comboUsage := ruleUsage(transcript)

	trades, err := g.loadTrades(ctx, summary.RunID)
	if err != nil {
		return nil, err
	}

	stats := Statistics{
		Uptime:           summary.StoppedAt.Sub(summary.StartedAt),
		TokensCreated:    summary.TokensCreated,
		TokensEvaluated:  summary.TokensEvaluated,
		TotalTrades:      summary.TotalTrades,
		ProfitableTrades: summary.ProfitableTrades,
		WinRatePct:       summary.WinRatePct,
		PnLSum:           summary.PnLSum,
		AvgTimeInTrade:   time.Duration(summary.AvgTimeInTradeS * float64(time.Second)),
		StartBalance:     summary.StartBalance,
		EndBalance:       summary.EndBalance,
	}
	if summary.TotalTrades > 0 {
		stats.AvgPnLPct = summary.PnLSum / float64(summary.TotalTrades)
	}
	if summary.StartBalance != 0 {
		stats.BalancePnLPct = (summary.EndBalance - summary.StartBalance) / summary.StartBalance * 100
	}

	r := &Report{
		GeneratedAt:    g.now(),
		RunID:          summary.RunID,
		Mode:           summary.Mode,
		Statistics:     stats,
		EnterRuleUsage: enterUsage,
		ExitRuleUsage:  exitUsage,
		ComboUsage:     comboUsage,
		Trades:         trades,
	}
	if enter != nil {
		r.EnterRules = enter.Sources()
	}
	if exit != nil {
		r.ExitRules = exit.Sources()
	}
	return r, nil
}

// loadTrades pulls the persisted trade log for the run, ordered by
// execution time.
func (g *Generator) loadTrades(ctx context.Context, runID string) ([]TradeRow, error) {
	if g.tradeLog == nil {
		return nil, nil
	}

	entries, err := g.tradeLog.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load trade log: %w", err)
	}

	rows := make([]TradeRow, len(entries))
	for i, e := range entries {
		rows[i] = TradeRow{
			Mint:         e.Mint,
			Action:       string(e.Action),
			RuleIndex:    e.RuleIndex,
			TokenAmount:  e.TokenAmount,
			Mcap:         e.Mcap,
			SolValue:     e.SolValue,
			BalanceAfter: e.BalanceAfter,
			PnLPct:       e.PnLPct,
			ExecutedAt:   e.ExecutedAt,
		}
	}
	return rows, nil
}

// ruleUsage counts winning rule-sets across completed round trips. Open
// positions (exit rule still zero) only contribute to the entry counts.
func ruleUsage(transcript map[string]domain.TranscriptEntry) (enter, exit []RuleUsageRow, combos []ComboUsageRow) {
	type combo struct{ enter, exit int }
	enterCounts := make(map[int]int)
	exitCounts := make(map[int]int)
	comboCounts := make(map[combo]int)

	for _, t := range transcript {
		enterCounts[t.EntryRule]++
		if t.ExitRule != 0 {
			exitCounts[t.ExitRule]++
			comboCounts[combo{t.EntryRule, t.ExitRule}]++
		}
	}

	enter = usageRows(enterCounts)
	exit = usageRows(exitCounts)

	total := 0
	for _, n := range comboCounts {
		total += n
	}
	for k, n := range comboCounts {
		combos = append(combos, ComboUsageRow{
			EnterRule: k.enter,
			ExitRule:  k.exit,
			Count:     n,
			SharePct:  float64(n) / float64(total) * 100,
		})
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].EnterRule != combos[j].EnterRule {
			return combos[i].EnterRule < combos[j].EnterRule
		}
		return combos[i].ExitRule < combos[j].ExitRule
	})
	return enter, exit, combos
}

func usageRows(counts map[int]int) []RuleUsageRow {
	total := 0
	for _, n := range counts {
		total += n
	}

	rows := make([]RuleUsageRow, 0, len(counts))
	for idx, n := range counts {
		rows = append(rows, RuleUsageRow{
			RuleIndex: idx,
			Count:     n,
			SharePct:  float64(n) / float64(total) * 100,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RuleIndex < rows[j].RuleIndex })
	return rows
}
