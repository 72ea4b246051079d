package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/rules"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Run: `%s` | Mode: %s\n\n", r.RunID, r.Mode))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Conditions
	sb.WriteString("## Conditions\n\n")
	writeRuleSets(&sb, "Enter Conditions", r.EnterRules)
	writeRuleSets(&sb, "Exit Conditions", r.ExitRules)

	// Statistics
	s := r.Statistics
	sb.WriteString("## Statistics\n\n")
	sb.WriteString(fmt.Sprintf("- PnL: **%+.2f%%**\n", s.BalancePnLPct))
	sb.WriteString(fmt.Sprintf("- Balance: **%.4f SOL → %.4f SOL**\n", s.StartBalance, s.EndBalance))
	sb.WriteString(fmt.Sprintf("- Bot uptime: **%s**\n", FormatDuration(s.Uptime)))
	sb.WriteString(fmt.Sprintf("- No. of tokens created since bot initiation: **%d**\n", s.TokensCreated))
	sb.WriteString(fmt.Sprintf("- No. of tokens evaluated: **%d**\n", s.TokensEvaluated))
	sb.WriteString(fmt.Sprintf("- No. of trades taken: **%d**\n", s.TotalTrades))
	sb.WriteString(fmt.Sprintf("- No. of profitable trades: **%d**\n", s.ProfitableTrades))
	sb.WriteString(fmt.Sprintf("- Win rate: **%.2f%%**\n", s.WinRatePct))
	if s.TotalTrades > 0 {
		sb.WriteString(fmt.Sprintf("- Average PnL per trade: **%.2f%%**\n", s.AvgPnLPct))
		sb.WriteString(fmt.Sprintf("- Average time in trade: **%s**\n", FormatDuration(s.AvgTimeInTrade)))
	}
	sb.WriteString("\n")

	// Rule usage
	sb.WriteString("## Rule Usage\n\n")
	writeUsage(&sb, "Enter Conditions", r.EnterRuleUsage)
	writeUsage(&sb, "Exit Conditions", r.ExitRuleUsage)
	sb.WriteString("### Enter-Exit Combo\n\n")
	if len(r.ComboUsage) > 0 {
		sb.WriteString("| Enter | Exit | Count | Share |\n")
		sb.WriteString("|-------|------|-------|-------|\n")
		for _, c := range r.ComboUsage {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.0f%% |\n",
				ruleLabel(c.EnterRule), ruleLabel(c.ExitRule), c.Count, c.SharePct))
		}
	} else {
		sb.WriteString("No completed round trips.\n")
	}
	sb.WriteString("\n")

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Time | Action | Token | Rule | Amount | Mcap | SOL | Balance | PnL |\n")
		sb.WriteString("|------|--------|-------|------|--------|------|-----|---------|-----|\n")
		for _, t := range r.Trades {
			pnl := "-"
			if t.PnLPct != nil {
				pnl = fmt.Sprintf("%+.2f%%", *t.PnLPct)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.2f | %.2f | %.6f | %.4f | %s |\n",
				t.ExecutedAt.Format(time.RFC3339), t.Action, t.Mint, ruleLabel(t.RuleIndex),
				t.TokenAmount, t.Mcap, t.SolValue, t.BalanceAfter, pnl))
		}
	} else {
		sb.WriteString("No trades recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func writeRuleSets(sb *strings.Builder, title string, sets []rules.RuleSet) {
	sb.WriteString(fmt.Sprintf("### %s\n\n", title))
	if len(sets) == 0 {
		sb.WriteString("Not available.\n\n")
		return
	}
	for i, set := range sets {
		sb.WriteString(fmt.Sprintf("Condition %d:\n", i+1))
		for _, cond := range set {
			sb.WriteString(fmt.Sprintf("- %s\n", cond))
		}
		sb.WriteString("\n")
	}
}

func writeUsage(sb *strings.Builder, title string, rowsIn []RuleUsageRow) {
	sb.WriteString(fmt.Sprintf("### %s\n\n", title))
	if len(rowsIn) == 0 {
		sb.WriteString("No data.\n\n")
		return
	}
	sb.WriteString("| Condition | Count | Share |\n")
	sb.WriteString("|-----------|-------|-------|\n")
	for _, row := range rowsIn {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.0f%% |\n", ruleLabel(row.RuleIndex), row.Count, row.SharePct))
	}
	sb.WriteString("\n")
}

// ruleLabel spells out the reserved forced-exit indices.
func ruleLabel(idx int) string {
	switch idx {
	case domain.ExitRuleShutdown:
		return "shutdown"
	case domain.ExitRuleStale:
		return "stale"
	default:
		return fmt.Sprintf("%d", idx)
	}
}

// FormatDuration renders a duration as "Xh Ym Zs" style text, dropping zero
// components. Sub-minute durations keep two decimals.
func FormatDuration(d time.Duration) string {
	secs := math.Round(d.Seconds()*100) / 100
	if secs < 60 {
		return fmt.Sprintf("%g s", secs)
	}

	total := int(math.Round(secs))
	hours := total / 3600
	minutes := total % 3600 / 60
	sec := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d h", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d m", minutes))
	}
	if sec > 0 {
		parts = append(parts, fmt.Sprintf("%d s", sec))
	}
	return strings.Join(parts, " ")
}
