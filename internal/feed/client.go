// Package feed streams token creation and trade events from the pumpportal
// WebSocket endpoint. A replay implementation serves recorded streams for
// offline runs.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"gem-sniper/internal/domain"
)

// DefaultEndpoint is the public pumpportal data stream.
const DefaultEndpoint = "wss://pumpportal.fun/api/data"

// Feed is the event source the engine consumes. Subscription changes take
// effect on the upstream after a round trip; events already in flight for an
// unsubscribed token may still be delivered.
type Feed interface {
	// Events returns the decoded event stream. The channel is closed when
	// the feed shuts down.
	Events() <-chan domain.FeedEvent
	// SubscribeNewTokens starts delivery of token creation events.
	SubscribeNewTokens() error
	// UnsubscribeNewTokens stops delivery of token creation events.
	UnsubscribeNewTokens() error
	// SubscribeTokenTrades starts delivery of trade events for mints.
	SubscribeTokenTrades(mints ...string) error
	// UnsubscribeTokenTrades stops delivery of trade events for mints.
	UnsubscribeTokenTrades(mints ...string) error
	// Close tears the feed down and closes the event channel.
	Close() error
}

// ClientConfig configures WebSocket client behavior.
type ClientConfig struct {
	// PingInterval is the interval for keepalive ping frames.
	PingInterval time.Duration
	// WriteTimeout is the timeout for writing control messages.
	WriteTimeout time.Duration
	// EventBuffer is the capacity of the outbound event channel.
	EventBuffer int
	// Logger receives connection-level messages.
	Logger *log.Logger
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		EventBuffer:  10000,
		Logger:       log.Default(),
	}
}

// Client implements Feed over gorilla/websocket.
type Client struct {
	endpoint string
	config   ClientConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	events chan domain.FeedEvent
	done   chan struct{}
	wg     sync.WaitGroup
}

// subscriptionRequest is the outbound control message format.
type subscriptionRequest struct {
	Method string   `json:"method"`
	Keys   []string `json:"keys,omitempty"`
}

// NewClient connects to the endpoint and starts the read and ping loops.
func NewClient(ctx context.Context, endpoint string, config *ClientConfig) (*Client, error) {
	cfg := DefaultClientConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", endpoint, err)
	}

	c := &Client{
		endpoint: endpoint,
		config:   cfg,
		logger:   cfg.Logger,
		conn:     conn,
		events:   make(chan domain.FeedEvent, cfg.EventBuffer),
		done:     make(chan struct{}),
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// Events returns the decoded event stream.
func (c *Client) Events() <-chan domain.FeedEvent {
	return c.events
}

// SubscribeNewTokens subscribes to token creation events.
func (c *Client) SubscribeNewTokens() error {
	return c.send(subscriptionRequest{Method: "subscribeNewToken"})
}

// UnsubscribeNewTokens cancels the token creation subscription.
func (c *Client) UnsubscribeNewTokens() error {
	return c.send(subscriptionRequest{Method: "unsubscribeNewToken"})
}

// SubscribeTokenTrades subscribes to trades on the given mints.
func (c *Client) SubscribeTokenTrades(mints ...string) error {
	if len(mints) == 0 {
		return nil
	}
	return c.send(subscriptionRequest{Method: "subscribeTokenTrade", Keys: mints})
}

// UnsubscribeTokenTrades cancels trade subscriptions for the given mints.
func (c *Client) UnsubscribeTokenTrades(mints ...string) error {
	if len(mints) == 0 {
		return nil
	}
	return c.send(subscriptionRequest{Method: "unsubscribeTokenTrade", Keys: mints})
}

// send writes one control message under the connection write lock.
func (c *Client) send(req subscriptionRequest) error {
	if c.closed.Load() {
		return fmt.Errorf("feed closed")
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write %s: %w", req.Method, err)
	}
	return nil
}

// Close shuts the feed down and closes the event channel.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := c.conn.Close()
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.events)
	return err
}

// readLoop reads messages and dispatches decoded events.
func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				c.logger.Printf("[feed] read error: %v", err)
			}
			return
		}

		ev, ok, err := decode(message)
		if err != nil {
			c.logger.Printf("[feed] undecodable message dropped: %v", err)
			continue
		}
		if !ok {
			// Subscription ack, not an event.
			continue
		}

		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

// decode parses one wire message. ok is false for subscription acks, which
// carry no txType field.
func decode(message []byte) (ev domain.FeedEvent, ok bool, err error) {
	if err := json.Unmarshal(message, &ev); err != nil {
		return domain.FeedEvent{}, false, fmt.Errorf("unmarshal event: %w", err)
	}
	if ev.TxType == "" {
		return domain.FeedEvent{}, false, nil
	}
	return ev, true, nil
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil && !c.closed.Load() {
				c.logger.Printf("[feed] ping failed: %v", err)
			}
			c.connMu.Unlock()
		}
	}
}

// Ensure Client implements Feed.
var _ Feed = (*Client)(nil)
