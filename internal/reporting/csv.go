package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderCSV renders the trade table as CSV string.
func RenderCSV(trades []TradeRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("executed_at,action,mint,rule_index,token_amount,mcap,sol_value,balance_after,pnl_pct\n")

	// Rows
	for _, t := range trades {
		pnl := ""
		if t.PnLPct != nil {
			pnl = fmt.Sprintf("%.6f", *t.PnLPct)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.6f,%.6f,%.6f,%.6f,%s\n",
			t.ExecutedAt.Format(time.RFC3339Nano),
			t.Action,
			t.Mint,
			t.RuleIndex,
			t.TokenAmount,
			t.Mcap,
			t.SolValue,
			t.BalanceAfter,
			pnl,
		))
	}

	return sb.String()
}
