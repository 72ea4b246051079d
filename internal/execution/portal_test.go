package execution

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gem-sniper/internal/domain"
)

func TestPortalSubmitterRetriesUntilLanded(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(tradeResponse{Signature: "5sig"})
	}))
	defer srv.Close()

	p := NewPortalSubmitter("key", WithEndpoint(srv.URL), WithBackoff(time.Millisecond))

	r := p.Submit(context.Background(), Order{Action: domain.ActionBuy, Mint: "mint", Amount: 0.5, PriorityFee: 0.001})

	require.True(t, r.Success)
	require.Equal(t, 2, r.Retries)
	require.Equal(t, 0.001, r.Fee)
	require.Equal(t, 3, attempts)
}

func TestPortalSubmitterSellAllEncoding(t *testing.T) {
	var got tradeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		require.Equal(t, "key", r.URL.Query().Get("api-key"))
		json.NewEncoder(w).Encode(tradeResponse{Signature: "5sig"})
	}))
	defer srv.Close()

	p := NewPortalSubmitter("key", WithEndpoint(srv.URL), WithBackoff(time.Millisecond))

	r := p.Submit(context.Background(), Order{
		Action:      domain.ActionSell,
		Mint:        "mint",
		SellAll:     true,
		SlippagePct: 25,
		PriorityFee: 0.0005,
		Pool:        "pump",
	})

	require.True(t, r.Success)
	require.Equal(t, "sell", got.Action)
	require.Equal(t, "100%", got.Amount)
	require.Equal(t, "false", got.DenominatedInSol)
	require.Equal(t, 25.0, got.Slippage)
	require.Equal(t, "pump", got.Pool)
}

func TestPortalSubmitterRejectedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tradeResponse{Errors: []string{"insufficient balance"}})
	}))
	defer srv.Close()

	p := NewPortalSubmitter("key", WithEndpoint(srv.URL), WithBackoff(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := p.Submit(ctx, Order{Action: domain.ActionBuy, Mint: "mint"})

	require.False(t, r.Success)
	require.Greater(t, r.Retries, 0)
}

func TestPortalSubmitterStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPortalSubmitter("key", WithEndpoint("http://127.0.0.1:0"), WithBackoff(time.Millisecond))
	r := p.Submit(ctx, Order{Action: domain.ActionBuy, Mint: "mint"})

	require.False(t, r.Success)
}
