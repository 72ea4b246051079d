package feed

import (
	"bytes"
	"io"
	"testing"
	"time"

	"gem-sniper/internal/domain"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func ptr[T any](v T) *T { return &v }

func TestRecordAndReplay(t *testing.T) {
	var buf bytes.Buffer

	rec := NewRecorder(nopWriteCloser{&buf})
	events := []domain.FeedEvent{
		{TxType: domain.TxTypeCreate, Mint: "mintA", Trader: "creatorA"},
		{TxType: domain.TxTypeBuy, Mint: "mintA", Trader: "t1", SolAmount: ptr(0.5), TokenAmount: ptr(100.0), MarketCapSol: ptr(40.0)},
		{TxType: domain.TxTypeSell, Mint: "mintB", Trader: "t2", SolAmount: ptr(0.1), TokenAmount: ptr(50.0), MarketCapSol: ptr(30.0)},
	}
	for _, ev := range events {
		if err := rec.Record(ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close recorder: %v", err)
	}

	replay := NewReplay(io.NopCloser(&buf), nil)
	defer replay.Close()

	// Subscribed to creations and mintA trades only; the mintB trade
	// must be filtered out.
	replay.SubscribeNewTokens()
	replay.SubscribeTokenTrades("mintA")

	var got []domain.FeedEvent
	for ev := range replay.Events() {
		got = append(got, ev)
	}

	if len(got) != 2 {
		t.Fatalf("replayed %d events, want 2: %+v", len(got), got)
	}
	if !got[0].IsCreation() || got[0].Mint != "mintA" {
		t.Errorf("first event = %+v, want creation of mintA", got[0])
	}
	if got[1].TxType != domain.TxTypeBuy || *got[1].SolAmount != 0.5 {
		t.Errorf("second event = %+v, want mintA buy", got[1])
	}
}

func TestReplaySkipsBadLines(t *testing.T) {
	input := `{"at":"2026-01-02T15:04:05Z","event":{"txType":"create","mint":"m1","traderPublicKey":"c1"}}
garbage line
{"at":"2026-01-02T15:04:06Z","event":{"txType":"create","mint":"m2","traderPublicKey":"c2"}}
`
	replay := NewReplay(io.NopCloser(bytes.NewBufferString(input)), nil)
	defer replay.Close()
	replay.SubscribeNewTokens()

	var mints []string
	for ev := range replay.Events() {
		mints = append(mints, ev.Mint)
	}
	if len(mints) != 2 || mints[0] != "m1" || mints[1] != "m2" {
		t.Errorf("mints = %v, want [m1 m2]", mints)
	}
}

func TestReplayCloseStopsStream(t *testing.T) {
	// Unbuffered delivery against a closed consumer must not hang.
	cfg := DefaultReplayConfig()
	cfg.EventBuffer = 1

	var buf bytes.Buffer
	rec := NewRecorder(nopWriteCloser{&buf})
	for i := 0; i < 100; i++ {
		rec.Record(domain.FeedEvent{TxType: domain.TxTypeCreate, Mint: "m", Trader: "c"})
	}
	rec.Close()

	replay := NewReplay(io.NopCloser(&buf), &cfg)
	replay.SubscribeNewTokens()

	done := make(chan struct{})
	go func() {
		replay.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close hung")
	}
}
