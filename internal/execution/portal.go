package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// DefaultPortalEndpoint is the hosted trading API endpoint. The api key
// authorizes server-side signing, so no keypair ever reaches this process.
const DefaultPortalEndpoint = "https://pumpportal.fun/api/trade"

// DefaultRetryBackoff is the pause between live submission attempts.
const DefaultRetryBackoff = 3 * time.Second

// PortalSubmitter submits real orders to the trading API. Failed
// submissions are retried with a fixed backoff until one lands or the
// context is cancelled; there is no giving-up state.
type PortalSubmitter struct {
	endpoint string
	apiKey   string
	client   *http.Client
	backoff  time.Duration
	logger   *log.Logger
}

// PortalOption configures PortalSubmitter.
type PortalOption func(*PortalSubmitter)

// WithEndpoint overrides the trading API endpoint.
func WithEndpoint(endpoint string) PortalOption {
	return func(p *PortalSubmitter) {
		p.endpoint = endpoint
	}
}

// WithBackoff sets the delay between submission attempts.
func WithBackoff(d time.Duration) PortalOption {
	return func(p *PortalSubmitter) {
		p.backoff = d
	}
}

// WithClient sets a custom http.Client.
func WithClient(client *http.Client) PortalOption {
	return func(p *PortalSubmitter) {
		p.client = client
	}
}

// WithLogger sets the submitter's logger.
func WithLogger(logger *log.Logger) PortalOption {
	return func(p *PortalSubmitter) {
		p.logger = logger
	}
}

// NewPortalSubmitter creates a live submitter authorized by apiKey.
func NewPortalSubmitter(apiKey string, opts ...PortalOption) *PortalSubmitter {
	p := &PortalSubmitter{
		endpoint: DefaultPortalEndpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		backoff:  DefaultRetryBackoff,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// tradeRequest is the wire form of one order.
type tradeRequest struct {
	Action           string      `json:"action"`
	Mint             string      `json:"mint"`
	Amount           interface{} `json:"amount"` // number, or "100%" to sell all
	DenominatedInSol string      `json:"denominatedInSol"`
	Slippage         float64     `json:"slippage"`
	PriorityFee      float64     `json:"priorityFee"`
	Pool             string      `json:"pool"`
}

// tradeResponse is the wire form of the API response.
type tradeResponse struct {
	Signature string   `json:"signature"`
	Errors    []string `json:"errors"`
}

// Submit posts the order to the trading API, retrying indefinitely with a
// fixed backoff. Retries counts the failed attempts before the one that
// landed; the engine folds them into its fee accounting.
func (p *PortalSubmitter) Submit(ctx context.Context, order Order) Receipt {
	started := time.Now()
	retries := 0

	for {
		sig, err := p.submitOnce(ctx, order)
		if err == nil {
			p.logger.Printf("landed %s %s after %d retries: https://solscan.io/tx/%s", order.Action, order.Mint, retries, sig)
			return Receipt{Success: true, Retries: retries, Fee: order.PriorityFee, Delay: time.Since(started)}
		}
		if ctx.Err() != nil {
			return Receipt{Success: false, Retries: retries, Fee: order.PriorityFee, Delay: time.Since(started)}
		}

		retries++
		p.logger.Printf("submission of %s %s failed (attempt %d): %v, retrying in %v", order.Action, order.Mint, retries, err, p.backoff)

		select {
		case <-ctx.Done():
			return Receipt{Success: false, Retries: retries, Fee: order.PriorityFee, Delay: time.Since(started)}
		case <-time.After(p.backoff):
		}
	}
}

// submitOnce performs a single API round trip.
func (p *PortalSubmitter) submitOnce(ctx context.Context, order Order) (string, error) {
	req := tradeRequest{
		Action:           string(order.Action),
		Mint:             order.Mint,
		Amount:           order.Amount,
		DenominatedInSol: "true",
		Slippage:         order.SlippagePct,
		PriorityFee:      order.PriorityFee,
		Pool:             order.Pool,
	}
	if order.SellAll {
		req.Amount = "100%"
		req.DenominatedInSol = "false"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal trade request: %w", err)
	}

	url := p.endpoint
	if p.apiKey != "" {
		url = fmt.Sprintf("%s?api-key=%s", p.endpoint, p.apiKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var tr tradeResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(tr.Errors) > 0 {
		return "", fmt.Errorf("trade rejected: %v", tr.Errors)
	}
	if tr.Signature == "" {
		return "", fmt.Errorf("trade response missing signature")
	}

	return tr.Signature, nil
}

// Ensure PortalSubmitter implements Submitter.
var _ Submitter = (*PortalSubmitter)(nil)
