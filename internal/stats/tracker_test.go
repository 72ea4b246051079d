package stats

import (
	"testing"
	"time"

	"gem-sniper/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func tradeEvent(txType string, trader string, sol, mcap float64) *domain.FeedEvent {
	return &domain.FeedEvent{
		TxType:       txType,
		Mint:         "mint-1",
		Trader:       trader,
		TokenAmount:  ptr(1000.0),
		SolAmount:    ptr(sol),
		MarketCapSol: ptr(mcap),
	}
}

func TestTracker_BuySellCounters(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	tr := NewTracker("mint-1", "creator", clock.Now)

	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "alice", 1.0, 100))
	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "bob", 3.0, 110))
	tr.ApplyTrade(tradeEvent(domain.TxTypeSell, "alice", 0.5, 105))

	s := tr.State
	if s.Buys != 2 || s.Sells != 1 || s.TotalTrades != 3 {
		t.Fatalf("counters = %d/%d/%d, want 2/1/3", s.Buys, s.Sells, s.TotalTrades)
	}
	if s.BuySellRatio != 2 {
		t.Fatalf("BuySellRatio = %v, want 2", s.BuySellRatio)
	}
	if s.TotalBuyVolume != 4.0 {
		t.Fatalf("TotalBuyVolume = %v, want 4.0", s.TotalBuyVolume)
	}
	if s.AvgBuyAmount != 2.0 {
		t.Fatalf("AvgBuyAmount = %v, want 2.0", s.AvgBuyAmount)
	}
	if s.CurrentMcap != 105 {
		t.Fatalf("CurrentMcap = %v, want 105", s.CurrentMcap)
	}
}

func TestTracker_RatioIsOneWithoutSells(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	tr := NewTracker("mint-1", "creator", clock.Now)

	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "alice", 1.0, 100))
	if tr.State.BuySellRatio != 1 {
		t.Fatalf("BuySellRatio = %v, want 1", tr.State.BuySellRatio)
	}
}

func TestTracker_CreatorSold(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	tr := NewTracker("mint-1", "creator", clock.Now)

	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "creator", 1.0, 100))
	if tr.State.CreatorSold {
		t.Fatal("CreatorSold set by a creator buy")
	}

	tr.ApplyTrade(tradeEvent(domain.TxTypeSell, "creator", 1.0, 90))
	if !tr.State.CreatorSold {
		t.Fatal("CreatorSold not set by a creator sell")
	}
}

func TestTracker_TrendAfterThreeSamples(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	tr := NewTracker("mint-1", "creator", clock.Now)

	// Two samples: no regression yet.
	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "alice", 1.0, 100))
	clock.Advance(time.Second)
	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "alice", 1.0, 110))
	if tr.State.Slope != 0 {
		t.Fatalf("Slope = %v before third sample, want 0", tr.State.Slope)
	}

	clock.Advance(time.Second)
	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "alice", 1.0, 120))

	// mcap rises 10 per second on a perfect line.
	if got := tr.State.Slope; got < 9.999 || got > 10.001 {
		t.Fatalf("Slope = %v, want 10", got)
	}
	if got := tr.State.TrendStrength; got < 0.999 {
		t.Fatalf("TrendStrength = %v, want 1", got)
	}
}

func TestTracker_PoolTagUpdates(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	tr := NewTracker("mint-1", "creator", clock.Now)

	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "alice", 1.0, 100))
	if tr.State.Pool != "auto" {
		t.Fatalf("Pool = %q, want auto", tr.State.Pool)
	}

	ev := tradeEvent(domain.TxTypeBuy, "alice", 1.0, 100)
	ev.Pool = ptr("pump-amm")
	tr.ApplyTrade(ev)
	if tr.State.Pool != "pump-amm" {
		t.Fatalf("Pool = %q, want pump-amm", tr.State.Pool)
	}
}

func TestTracker_LastTradeAtAdvances(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	tr := NewTracker("mint-1", "creator", clock.Now)

	tr.ApplyTrade(tradeEvent(domain.TxTypeBuy, "alice", 1.0, 100))
	first := tr.State.LastTradeAt

	clock.Advance(5 * time.Second)
	tr.ApplyTrade(tradeEvent(domain.TxTypeSell, "alice", 1.0, 100))
	if !tr.State.LastTradeAt.After(first) {
		t.Fatal("LastTradeAt did not advance")
	}
}
