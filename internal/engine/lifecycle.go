package engine

import (
	"context"
	"time"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/execution"
	"gem-sniper/internal/idhash"
	"gem-sniper/internal/rules"
)

// priceScale converts a market cap in SOL to a per-token price.
const priceScale = 1_000_000_000

// baseFee is the flat network fee paid by every transaction, in SOL.
const baseFee = 0.000005

// handleTrade applies a trade event to its tracker and evaluates the token's
// lifecycle. Trades for unknown mints are leftovers of a discarded batch and
// are dropped.
func (e *Engine) handleTrade(ctx context.Context, ev *domain.FeedEvent) {
	tr, ok := e.tokens[ev.Mint]
	if !ok {
		return
	}
	st := tr.State
	if st.Exhausted {
		return
	}

	if ev.MarketCapSol == nil || (ev.TxType == domain.TxTypeBuy && ev.SolAmount == nil) {
		e.logger.Printf("malformed trade event for %s dropped: %+v", ev.Mint, *ev)
		if e.metrics != nil {
			e.metrics.MalformedEvents.Inc()
		}
		return
	}

	prior := st.TotalTrades
	tr.ApplyTrade(ev)
	if prior == 0 {
		// First trade only seeds the tracker.
		return
	}

	if !st.TradeEntered {
		e.maybeEnter(ctx, st)
	} else {
		e.maybeExit(ctx, st)
	}
}

// maybeEnter evaluates the entry rules and dispatches a buy when one fires.
func (e *Engine) maybeEnter(ctx context.Context, st *domain.TokenState) {
	hit, idx := e.enter.Evaluate(st, nil)
	if !hit || st.ExecutingOrder {
		return
	}

	if e.ledger.Balance() <= e.cfg.BuySize {
		e.logger.Printf("insufficient balance to enter %s: need %.4f, have %.4f",
			st.Mint, e.cfg.BuySize, e.ledger.Balance())
		return
	}

	st.ExecutingOrder = true
	e.dispatch(ctx, domain.ActionBuy, st, idx)
}

// maybeExit evaluates the exit rules with the derived position fields and
// dispatches a sell when one fires. While holding, every trade event also
// produces a status line.
func (e *Engine) maybeExit(ctx context.Context, st *domain.TokenState) {
	pnl := (st.CurrentMcap - st.EntryMcap) / st.EntryMcap * 100
	elapsed := e.now().Sub(st.EnteredAt).Seconds()

	hit, idx := e.exit.Evaluate(st, &rules.Derived{PnLPct: pnl, TimeElapsed: elapsed})
	if hit && !st.ExecutingOrder {
		st.ExecutingOrder = true
		e.dispatch(ctx, domain.ActionSell, st, idx)
		return
	}

	e.logger.Printf("token: %s | tx/sec: %.2f | buys/sells: %d/%d | mcap: %.2f | avg_buy: %.2f | slope: %.2f | strength: %.2f | PnL: %+.2f%% | elapsed: %.2fs | creator_sold: %v",
		st.Mint, st.TxPerSec, st.Buys, st.Sells, st.CurrentMcap, st.AvgBuyAmount,
		st.Slope, st.TrendStrength, pnl, elapsed, st.CreatorSold)
}

// dispatch hands an order to the submitter in its own goroutine. The
// completion comes back through the results channel so that all state
// mutation stays on the run loop.
func (e *Engine) dispatch(ctx context.Context, action domain.Action, st *domain.TokenState, ruleIdx int) {
	order := execution.Order{
		Action:      action,
		Mint:        st.Mint,
		SlippagePct: e.cfg.MaxSlippagePct,
		PriorityFee: e.cfg.PriorityFee,
		Pool:        st.Pool,
	}
	if action == domain.ActionBuy {
		order.Amount = e.cfg.BuySize
	} else {
		order.SellAll = true
	}

	if e.metrics != nil {
		e.metrics.OrdersSubmitted.WithLabelValues(string(action)).Inc()
	}

	refMcap := st.CurrentMcap
	go func() {
		receipt := e.submitter.Submit(ctx, order)
		select {
		case e.results <- execResult{mint: order.Mint, action: action, ruleIdx: ruleIdx, refMcap: refMcap, receipt: receipt}:
		case <-ctx.Done():
		}
	}()
}

// handleResult processes one order completion on the run loop.
func (e *Engine) handleResult(res *execResult) {
	if e.metrics != nil {
		e.metrics.ExecutionDelay.Observe(res.receipt.Delay.Seconds())
		e.metrics.ExecutionRetries.Observe(float64(res.receipt.Retries))
	}

	tr, ok := e.tokens[res.mint]
	if !ok {
		e.logger.Printf("completion for discarded token %s dropped", res.mint)
		return
	}
	st := tr.State

	if !res.receipt.Success {
		st.ExecutingOrder = false
		e.completed(res.action, "cancelled")
		return
	}

	switch res.action {
	case domain.ActionBuy:
		e.completeEntry(st, res)
	case domain.ActionSell:
		e.completeExit(st, res)
	}
}

// completeEntry finalizes a buy. On the simulated path the slippage guard
// re-checks how far the price ran while the order was in flight; the live
// path trusts the on-chain slippage setting and commits unconditionally.
func (e *Engine) completeEntry(st *domain.TokenState, res *execResult) {
	if e.cfg.Mode == domain.ModeSimulated {
		movement := (st.CurrentMcap - res.refMcap) / st.CurrentMcap * 100
		if movement >= e.cfg.MaxSlippagePct {
			st.ExecutingOrder = false
			e.logger.Printf("entry for %s abandoned: price moved %+.2f%% past slippage limit", st.Mint, movement)
			e.completed(domain.ActionBuy, "slipped")
			return
		}
	}

	var solSpent float64
	if e.cfg.Mode == domain.ModeLive {
		solSpent = e.cfg.BuySize + baseFee + res.receipt.Fee +
			float64(res.receipt.Retries)*(res.receipt.Fee+baseFee)
	} else {
		solSpent = e.cfg.BuySize + baseFee + res.receipt.Fee
	}

	e.applyEntry(st, res.ruleIdx, solSpent)
	st.ExecutingOrder = false
	e.completed(domain.ActionBuy, "filled")
}

// applyEntry commits the position: entry snapshot, balance debit, trade log.
func (e *Engine) applyEntry(st *domain.TokenState, ruleIdx int, solSpent float64) {
	now := e.now()
	st.TradeEntered = true
	st.EnteredAt = now
	st.LastTradeAt = now
	st.EntryMcap = st.CurrentMcap
	st.EntryPrice = st.CurrentMcap / priceScale
	st.TokenAmount = e.cfg.BuySize / st.EntryPrice

	balance := e.ledger.Balance() - solSpent
	e.ledger.SetBalance(balance)

	e.transcript[st.Mint] = &domain.TranscriptEntry{EntryRule: ruleIdx}

	e.logTrade(&domain.TradeLogEntry{
		RunID:        e.runID,
		Mint:         st.Mint,
		Action:       domain.ActionBuy,
		RuleIndex:    ruleIdx,
		TokenAmount:  st.TokenAmount,
		Mcap:         st.CurrentMcap,
		SolValue:     solSpent,
		BalanceAfter: balance,
		ExecutedAt:   now,
	})

	e.logger.Printf("BUY   | amount: %.2f | token: %s | mcap: %.2f | sol: %.6f | balance: %.4f | entry rule: %d",
		st.TokenAmount, st.Mint, st.CurrentMcap, solSpent, balance, ruleIdx)

	if e.metrics != nil {
		e.metrics.OpenPositions.Inc()
		e.metrics.Balance.Set(balance)
	}
}

// completeExit finalizes a sell that went through the submitter.
func (e *Engine) completeExit(st *domain.TokenState, res *execResult) {
	if e.cfg.Mode == domain.ModeSimulated {
		movement := (st.CurrentMcap - res.refMcap) / st.CurrentMcap * 100
		if -movement >= e.cfg.MaxSlippagePct {
			st.ExecutingOrder = false
			e.logger.Printf("exit for %s abandoned: price moved %+.2f%% past slippage limit", st.Mint, movement)
			e.completed(domain.ActionSell, "slipped")
			return
		}
	}

	e.applyExit(st, res.ruleIdx, res.receipt.Fee, res.receipt.Retries)
	e.completed(domain.ActionSell, "filled")
}

// forceExit liquidates a position outside the rule evaluator: stale sweeps
// and shutdown. The simulated path applies immediately with no latency and
// no priority fee; the live path submits a real sell first.
func (e *Engine) forceExit(ctx context.Context, st *domain.TokenState, ruleIdx int) {
	if e.cfg.Mode == domain.ModeLive {
		receipt := e.submitter.Submit(ctx, execution.Order{
			Action:      domain.ActionSell,
			Mint:        st.Mint,
			SellAll:     true,
			SlippagePct: e.cfg.MaxSlippagePct,
			PriorityFee: e.cfg.PriorityFee,
			Pool:        st.Pool,
		})
		if !receipt.Success {
			e.logger.Printf("forced exit of %s did not land", st.Mint)
			return
		}
		e.applyExit(st, ruleIdx, receipt.Fee, receipt.Retries)
		return
	}

	e.applyExit(st, ruleIdx, 0, 0)
}

// applyExit commits the round trip: proceeds, balance credit, PnL, stats.
func (e *Engine) applyExit(st *domain.TokenState, ruleIdx int, effectiveFee float64, retries int) {
	var price, cost float64
	if e.cfg.Mode == domain.ModeLive {
		price = st.CurrentMcap / priceScale
		cost = baseFee + effectiveFee + float64(retries)*(effectiveFee+baseFee)
	} else {
		// Selling moves the price against us; fold our own size back in.
		price = (st.CurrentMcap + e.cfg.BuySize) / priceScale
		cost = baseFee + effectiveFee
	}
	proceeds := st.TokenAmount*price - cost

	balance := e.ledger.Balance() + proceeds
	e.ledger.SetBalance(balance)

	pnl := (st.CurrentMcap - st.EntryMcap) / st.EntryMcap * 100
	held := e.now().Sub(st.EnteredAt)

	st.Exhausted = true
	st.TradeEntered = false
	st.ExecutingOrder = false

	e.runStats.TotalTrades++
	e.runStats.TimeInTradeSum += held
	e.runStats.PnLSum += pnl
	if pnl > 0 {
		e.runStats.ProfitableTrades++
	}

	if t, ok := e.transcript[st.Mint]; ok {
		t.ExitRule = ruleIdx
	}

	now := e.now()
	e.logTrade(&domain.TradeLogEntry{
		RunID:        e.runID,
		Mint:         st.Mint,
		Action:       domain.ActionSell,
		RuleIndex:    ruleIdx,
		TokenAmount:  st.TokenAmount,
		Mcap:         st.CurrentMcap,
		SolValue:     proceeds,
		BalanceAfter: balance,
		PnLPct:       &pnl,
		ExecutedAt:   now,
	})

	e.logger.Printf("SELL  | amount: %.2f | token: %s | mcap: %.2f | sol: %.6f | balance: %.4f | exit rule: %d | PnL: %+.2f%%",
		st.TokenAmount, st.Mint, st.CurrentMcap, proceeds, balance, ruleIdx, pnl)

	if e.metrics != nil {
		e.metrics.OpenPositions.Dec()
		e.metrics.Balance.Set(balance)
		e.metrics.PnLSum.Set(e.runStats.PnLSum)
	}
}

// logTrade assigns the deterministic entry ID and persists the entry.
// Storage trouble never interrupts trading.
func (e *Engine) logTrade(entry *domain.TradeLogEntry) {
	entry.EntryID = idhash.ComputeEntryID(entry.RunID, entry.Mint, string(entry.Action), entry.ExecutedAt.UnixNano())
	if e.tradeLog == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.tradeLog.Insert(ctx, entry); err != nil {
		e.logger.Printf("trade log write for %s failed: %v", entry.Mint, err)
		if e.metrics != nil {
			e.metrics.TradeLogErrors.Inc()
		}
	}
}

func (e *Engine) completed(action domain.Action, outcome string) {
	if e.metrics != nil {
		e.metrics.OrdersCompleted.WithLabelValues(string(action), outcome).Inc()
	}
}
