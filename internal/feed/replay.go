package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"gem-sniper/internal/domain"
)

// capturedEvent is one line of a JSONL capture file.
type capturedEvent struct {
	At    time.Time        `json:"at"`
	Event domain.FeedEvent `json:"event"`
}

// ReplayConfig configures a replay feed.
type ReplayConfig struct {
	// Speed scales recorded inter-event gaps: 1 replays in real time,
	// 2 twice as fast, 0 replays with no pacing at all.
	Speed float64
	// EventBuffer is the capacity of the outbound event channel.
	EventBuffer int
	// Logger receives replay progress messages.
	Logger *log.Logger
}

// DefaultReplayConfig returns the default replay configuration.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		Speed:       0,
		EventBuffer: 1024,
		Logger:      log.Default(),
	}
}

// Replay serves a recorded JSONL event stream through the Feed interface.
// Subscription calls gate delivery the way the upstream would: creation
// events flow only while the new-token subscription is active, trade events
// only for subscribed mints.
type Replay struct {
	config ReplayConfig
	logger *log.Logger

	source io.ReadCloser
	events chan domain.FeedEvent
	done   chan struct{}
	wg     sync.WaitGroup

	mu        sync.Mutex
	newTokens bool
	mints     map[string]struct{}
	started   bool

	closeOnce sync.Once
}

// OpenReplay opens a JSONL capture file as a replay feed.
func OpenReplay(path string, config *ReplayConfig) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}
	return NewReplay(f, config), nil
}

// NewReplay creates a replay feed over the given JSONL stream.
func NewReplay(source io.ReadCloser, config *ReplayConfig) *Replay {
	cfg := DefaultReplayConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return &Replay{
		config: cfg,
		logger: cfg.Logger,
		source: source,
		events: make(chan domain.FeedEvent, cfg.EventBuffer),
		done:   make(chan struct{}),
		mints:  make(map[string]struct{}),
	}
}

// start launches the streaming goroutine. The stream stays idle until the
// first subscription so that early events are not dropped against an empty
// subscription set.
func (r *Replay) start() {
	if r.started {
		return
	}
	r.started = true
	r.wg.Add(1)
	go r.run()
}

// Events returns the replayed event stream. The channel is closed when the
// capture is exhausted or the feed is closed.
func (r *Replay) Events() <-chan domain.FeedEvent {
	return r.events
}

// SubscribeNewTokens enables delivery of recorded creation events.
func (r *Replay) SubscribeNewTokens() error {
	r.mu.Lock()
	r.newTokens = true
	r.start()
	r.mu.Unlock()
	return nil
}

// UnsubscribeNewTokens disables delivery of recorded creation events.
func (r *Replay) UnsubscribeNewTokens() error {
	r.mu.Lock()
	r.newTokens = false
	r.mu.Unlock()
	return nil
}

// SubscribeTokenTrades enables delivery of recorded trades for mints.
func (r *Replay) SubscribeTokenTrades(mints ...string) error {
	r.mu.Lock()
	for _, m := range mints {
		r.mints[m] = struct{}{}
	}
	r.start()
	r.mu.Unlock()
	return nil
}

// UnsubscribeTokenTrades disables delivery of recorded trades for mints.
func (r *Replay) UnsubscribeTokenTrades(mints ...string) error {
	r.mu.Lock()
	for _, m := range mints {
		delete(r.mints, m)
	}
	r.mu.Unlock()
	return nil
}

// Close stops the replay.
func (r *Replay) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.mu.Lock()
		if !r.started {
			close(r.events)
			r.source.Close()
		}
		r.mu.Unlock()
	})
	r.wg.Wait()
	return nil
}

// wants reports whether the event passes the current subscription state.
func (r *Replay) wants(ev *domain.FeedEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.IsCreation() {
		return r.newTokens
	}
	_, ok := r.mints[ev.Mint]
	return ok
}

// run streams the capture, pacing by recorded timestamps when configured.
func (r *Replay) run() {
	defer r.wg.Done()
	defer close(r.events)
	defer r.source.Close()

	scanner := bufio.NewScanner(r.source)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var prev time.Time
	var replayed int

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec capturedEvent
		if err := json.Unmarshal(line, &rec); err != nil {
			r.logger.Printf("[replay] bad capture line skipped: %v", err)
			continue
		}

		if r.config.Speed > 0 && !prev.IsZero() && rec.At.After(prev) {
			gap := time.Duration(float64(rec.At.Sub(prev)) / r.config.Speed)
			select {
			case <-r.done:
				return
			case <-time.After(gap):
			}
		}
		prev = rec.At

		if !r.wants(&rec.Event) {
			continue
		}

		select {
		case r.events <- rec.Event:
			replayed++
		case <-r.done:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		r.logger.Printf("[replay] capture read error: %v", err)
	}
	r.logger.Printf("[replay] capture exhausted, %d events replayed", replayed)
}

// Ensure Replay implements Feed.
var _ Feed = (*Replay)(nil)
