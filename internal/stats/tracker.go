package stats

import (
	"time"

	"gem-sniper/internal/domain"
)

// Tracker owns the mutable statistics for one tracked token.
// It binds the shared TokenState to its rate counter and is only ever
// touched from the engine's event loop.
type Tracker struct {
	State   *domain.TokenState
	Creator string // creator wallet, drives the CreatorSold flag

	rate *RateCounter
	now  func() time.Time
}

// NewTracker creates a tracker for a mint with a fresh token state.
func NewTracker(mint, creator string, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		State:   domain.NewTokenState(mint),
		Creator: creator,
		rate:    NewRateCounter(DefaultRateWindow, now),
		now:     now,
	}
}

// ApplyTrade folds one trade event into the token state: counters, the
// market-cap trail, the trend regression, and the activity timestamp.
// The event must have passed field validation already.
func (t *Tracker) ApplyTrade(ev *domain.FeedEvent) {
	s := t.State
	now := t.now()

	t.rate.Record()
	s.TxPerSec = float64(t.rate.Rate())

	s.CurrentMcap = *ev.MarketCapSol
	s.McapLog = append(s.McapLog, s.CurrentMcap)
	s.McapTimes = append(s.McapTimes, now)

	if len(s.McapLog) > 2 {
		base := s.McapTimes[0]
		elapsed := make([]float64, len(s.McapTimes))
		for i, ts := range s.McapTimes {
			elapsed[i] = ts.Sub(base).Seconds()
		}
		s.Slope, s.TrendStrength = Regress(elapsed, s.McapLog)
	}

	switch ev.TxType {
	case domain.TxTypeBuy:
		s.Buys++
		s.TotalBuyVolume += *ev.SolAmount
		s.AvgBuyAmount = s.TotalBuyVolume / float64(s.Buys)
	case domain.TxTypeSell:
		s.Sells++
	}

	if ev.TxType == domain.TxTypeSell && ev.Trader == t.Creator {
		s.CreatorSold = true
	}

	if ev.Pool != nil && *ev.Pool != "" {
		s.Pool = *ev.Pool
	}

	s.TotalTrades = s.Buys + s.Sells
	if s.Sells != 0 {
		s.BuySellRatio = float64(s.Buys) / float64(s.Sells)
	} else {
		s.BuySellRatio = 1
	}
	s.LastTradeAt = now
}
