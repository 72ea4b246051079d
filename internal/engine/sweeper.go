package engine

import (
	"context"
	"time"

	"gem-sniper/internal/domain"
)

// sweepStale force-exits open positions whose token has gone quiet. An
// inactive token will not trade against us while the exit lands, so the
// simulated path skips the latency model entirely.
func (e *Engine) sweepStale(ctx context.Context) {
	for _, tr := range e.tokens {
		st := tr.State
		if !st.Holding() || st.ExecutingOrder {
			continue
		}
		if e.now().Sub(st.LastTradeAt) < e.cfg.InactivityLimit {
			continue
		}

		e.logger.Printf("position in %s stale for %v, forcing exit", st.Mint, e.now().Sub(st.LastTradeAt).Round(time.Second))
		e.forceExit(ctx, st, domain.ExitRuleStale)

		if e.metrics != nil {
			e.metrics.StaleExits.Inc()
		}
	}
}
