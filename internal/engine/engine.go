// Package engine runs the sniping loop: it admits newly created tokens into
// capacity-bounded batches, tracks their activity, evaluates the entry and
// exit rules on every trade, and drives positions through their lifecycle.
//
// All token and balance state is owned by the single goroutine inside Run.
// Feed events, order completions, batch ticks and sweep ticks are select
// cases on that loop; in-flight order submissions run in their own
// goroutines and report back through the results channel.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/execution"
	"gem-sniper/internal/feed"
	"gem-sniper/internal/idhash"
	"gem-sniper/internal/observability"
	"gem-sniper/internal/rules"
	"gem-sniper/internal/stats"
	"gem-sniper/internal/storage"
	"gem-sniper/internal/wallet"
)

const (
	// DefaultBatchInterval is how often an exhausted batch is considered
	// for discarding.
	DefaultBatchInterval = 30 * time.Second
	// DefaultSweepInterval is how often open positions are scanned for
	// inactivity.
	DefaultSweepInterval = 1 * time.Second
)

// ErrMalformedCreationEvent signals an unusable token creation event.
// Creation events are the batch admission signal, so a broken one means the
// upstream contract is violated and the run terminates.
var ErrMalformedCreationEvent = errors.New("malformed creation event")

// execResult is the completion report of one submitted order.
type execResult struct {
	mint    string
	action  domain.Action
	ruleIdx int
	refMcap float64 // market cap the order was priced against
	receipt execution.Receipt
}

// Engine owns a single run.
type Engine struct {
	cfg       domain.Config
	feed      feed.Feed
	submitter execution.Submitter
	ledger    wallet.Ledger
	enter     *rules.Compiled
	exit      *rules.Compiled
	tradeLog  storage.TradeLogStore
	metrics   *observability.Metrics
	logger    *log.Logger
	now       func() time.Time

	batchInterval time.Duration
	sweepInterval time.Duration

	runID        string
	startedAt    time.Time
	stoppedAt    time.Time
	startBalance float64

	tokens     map[string]*stats.Tracker
	subbed     int
	transcript map[string]*domain.TranscriptEntry
	runStats   domain.RunStats
	results    chan execResult
}

// Options contains configuration for creating an Engine.
type Options struct {
	Config    domain.Config
	Feed      feed.Feed
	Submitter execution.Submitter
	Ledger    wallet.Ledger
	Enter     *rules.Compiled
	Exit      *rules.Compiled

	// TradeLog receives one entry per executed action. Optional.
	TradeLog storage.TradeLogStore
	// Metrics receives run metrics. Optional.
	Metrics *observability.Metrics
	// Logger defaults to log.Default().
	Logger *log.Logger

	// BatchInterval and SweepInterval default to the package constants.
	BatchInterval time.Duration
	SweepInterval time.Duration

	// Now is the clock used for all timing decisions. Defaults to time.Now.
	Now func() time.Time
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if opts.Feed == nil {
		return nil, fmt.Errorf("engine: feed is required")
	}
	if opts.Submitter == nil {
		return nil, fmt.Errorf("engine: submitter is required")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("engine: ledger is required")
	}
	if opts.Enter == nil || opts.Exit == nil {
		return nil, fmt.Errorf("engine: entry and exit rules are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	batchInterval := opts.BatchInterval
	if batchInterval == 0 {
		batchInterval = DefaultBatchInterval
	}
	sweepInterval := opts.SweepInterval
	if sweepInterval == 0 {
		sweepInterval = DefaultSweepInterval
	}

	return &Engine{
		cfg:           opts.Config,
		feed:          opts.Feed,
		submitter:     opts.Submitter,
		ledger:        opts.Ledger,
		enter:         opts.Enter,
		exit:          opts.Exit,
		tradeLog:      opts.TradeLog,
		metrics:       opts.Metrics,
		logger:        logger,
		now:           now,
		batchInterval: batchInterval,
		sweepInterval: sweepInterval,
		tokens:        make(map[string]*stats.Tracker),
		transcript:    make(map[string]*domain.TranscriptEntry),
		results:       make(chan execResult, opts.Config.BatchCapacity),
	}, nil
}

// RunID returns the deterministic identifier of the run. Empty until Run
// has started.
func (e *Engine) RunID() string {
	return e.runID
}

// Stats returns a copy of the aggregate run counters.
func (e *Engine) Stats() domain.RunStats {
	return e.runStats
}

// Transcript returns a copy of the per-token entry/exit rule pairs.
func (e *Engine) Transcript() map[string]domain.TranscriptEntry {
	out := make(map[string]domain.TranscriptEntry, len(e.transcript))
	for mint, t := range e.transcript {
		out[mint] = *t
	}
	return out
}

// Summary builds the persisted aggregate of the run. Call after Run returns.
func (e *Engine) Summary() *domain.RunSummary {
	stopped := e.stoppedAt
	if stopped.IsZero() {
		stopped = e.now()
	}
	return &domain.RunSummary{
		RunID:            e.runID,
		Mode:             string(e.cfg.Mode),
		StartedAt:        e.startedAt,
		StoppedAt:        stopped,
		TokensCreated:    e.runStats.TokensCreated,
		TokensEvaluated:  e.runStats.TokensEvaluated,
		TotalTrades:      e.runStats.TotalTrades,
		ProfitableTrades: e.runStats.ProfitableTrades,
		WinRatePct:       e.runStats.WinRatePct(),
		PnLSum:           e.runStats.PnLSum,
		AvgTimeInTradeS:  e.runStats.AvgTimeInTrade().Seconds(),
		StartBalance:     e.startBalance,
		EndBalance:       e.ledger.Balance(),
	}
}

// Run executes the trading loop until the context is cancelled, the feed
// closes, or a fatal event arrives. It always performs graceful teardown:
// open unlocked positions are liquidated and subscriptions are withdrawn.
func (e *Engine) Run(ctx context.Context) error {
	e.startedAt = e.now()
	e.runID = idhash.ComputeRunID(string(e.cfg.Mode), e.startedAt.UnixMilli())
	e.startBalance = e.ledger.Balance()

	if err := e.feed.SubscribeNewTokens(); err != nil {
		return fmt.Errorf("subscribe new tokens: %w", err)
	}
	e.logger.Printf("run %s started, mode=%s balance=%.4f SOL batch_capacity=%d",
		e.runID[:12], e.cfg.Mode, e.startBalance, e.cfg.BatchCapacity)
	if e.metrics != nil {
		e.metrics.Balance.Set(e.startBalance)
	}

	batchTicker := time.NewTicker(e.batchInterval)
	defer batchTicker.Stop()
	sweepTicker := time.NewTicker(e.sweepInterval)
	defer sweepTicker.Stop()

	var runErr error

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case ev, ok := <-e.feed.Events():
			if !ok {
				e.logger.Printf("feed closed, stopping run")
				break loop
			}
			if err := e.handleEvent(ctx, &ev); err != nil {
				runErr = err
				break loop
			}

		case res := <-e.results:
			e.handleResult(&res)

		case <-batchTicker.C:
			e.discardBatch()

		case <-sweepTicker.C:
			e.sweepStale(ctx)
		}
	}

	e.shutdown()
	return runErr
}

// handleEvent routes one decoded feed event.
func (e *Engine) handleEvent(ctx context.Context, ev *domain.FeedEvent) error {
	if e.metrics != nil {
		e.metrics.EventsReceived.WithLabelValues(ev.TxType).Inc()
	}

	switch {
	case ev.IsCreation():
		return e.handleCreation(ev)
	case ev.IsTrade():
		e.handleTrade(ctx, ev)
		return nil
	default:
		e.logger.Printf("event with unknown txType %q dropped", ev.TxType)
		return nil
	}
}

// shutdown liquidates open unlocked positions and withdraws subscriptions.
func (e *Engine) shutdown() {
	// The run context is already done here; give live liquidations their
	// own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, tr := range e.tokens {
		st := tr.State
		if st.Holding() && !st.ExecutingOrder {
			e.forceExit(ctx, st, domain.ExitRuleShutdown)
		}
	}

	if err := e.feed.UnsubscribeNewTokens(); err != nil {
		e.logger.Printf("unsubscribe new tokens: %v", err)
	}
	mints := make([]string, 0, len(e.tokens))
	for mint := range e.tokens {
		mints = append(mints, mint)
	}
	if len(mints) > 0 {
		if err := e.feed.UnsubscribeTokenTrades(mints...); err != nil {
			e.logger.Printf("unsubscribe token trades: %v", err)
		}
	}

	e.stoppedAt = e.now()
	e.logger.Printf("run %s stopped: trades=%d win_rate=%.2f%% pnl_sum=%.2f balance=%.4f SOL",
		e.runID[:12], e.runStats.TotalTrades, e.runStats.WinRatePct(),
		e.runStats.PnLSum, e.ledger.Balance())
}
