package engine

import (
	"fmt"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/solana"
	"gem-sniper/internal/stats"
)

// handleCreation admits a newly created token into the current batch if
// there is capacity. The mint must be a valid address; a creation event
// without one means the feed contract is broken and the run terminates.
func (e *Engine) handleCreation(ev *domain.FeedEvent) error {
	e.runStats.TokensCreated++
	if e.metrics != nil {
		e.metrics.TokensCreated.Inc()
	}

	if ev.Mint == "" {
		return fmt.Errorf("%w: missing mint", ErrMalformedCreationEvent)
	}
	if err := solana.ValidateAddress(ev.Mint); err != nil {
		return fmt.Errorf("%w: mint %q: %v", ErrMalformedCreationEvent, ev.Mint, err)
	}

	if e.subbed >= e.cfg.BatchCapacity {
		return nil
	}

	// The creator key feeds the creator-sold flag; only trust a real
	// wallet address.
	if solana.ValidateAddress(ev.Trader) != nil || !solana.IsOnCurve(ev.Trader) {
		e.logger.Printf("creator key %q of %s is not a wallet address, skipping", ev.Trader, ev.Mint)
		return nil
	}

	e.subbed++
	e.runStats.TokensEvaluated++
	e.tokens[ev.Mint] = stats.NewTracker(ev.Mint, ev.Trader, e.now)

	if err := e.feed.SubscribeTokenTrades(ev.Mint); err != nil {
		e.logger.Printf("subscribe trades for %s: %v", ev.Mint, err)
	}

	if e.metrics != nil {
		e.metrics.TokensEvaluated.Inc()
		e.metrics.SubscribedTokens.Set(float64(e.subbed))
	}
	return nil
}

// discardBatch drops the current batch once it is full, but only while no
// position is open. Trackers are thrown away and capacity resets so a fresh
// batch of tokens can be admitted.
func (e *Engine) discardBatch() {
	if e.subbed < e.cfg.BatchCapacity {
		return
	}
	for _, tr := range e.tokens {
		if tr.State.Holding() {
			return
		}
	}

	mints := make([]string, 0, len(e.tokens))
	for mint := range e.tokens {
		mints = append(mints, mint)
	}
	if len(mints) > 0 {
		if err := e.feed.UnsubscribeTokenTrades(mints...); err != nil {
			e.logger.Printf("unsubscribe discarded batch: %v", err)
		}
	}

	e.tokens = make(map[string]*stats.Tracker)
	e.subbed = 0
	e.logger.Printf("* Discarded old batch, looking for new tokens... *")

	if e.metrics != nil {
		e.metrics.BatchesDiscarded.Inc()
		e.metrics.SubscribedTokens.Set(0)
	}
}
