// Package stats maintains the rolling per-token statistics the rule
// evaluator reads: a sliding-window trade rate, an incremental market-cap
// trend regression, and the trade counters on TokenState.
package stats

import "time"

// DefaultRateWindow is the sliding window for the trades-per-second estimate.
const DefaultRateWindow = time.Second

// RateCounter estimates events per second over a sliding time window.
// Timestamps are appended in order, so eviction is a prefix trim.
type RateCounter struct {
	window time.Duration
	times  []time.Time
	now    func() time.Time
}

// NewRateCounter creates a counter with the given window.
// A zero window falls back to DefaultRateWindow.
func NewRateCounter(window time.Duration, now func() time.Time) *RateCounter {
	if window <= 0 {
		window = DefaultRateWindow
	}
	if now == nil {
		now = time.Now
	}
	return &RateCounter{window: window, now: now}
}

// Record appends the current time to the counter.
func (c *RateCounter) Record() {
	c.times = append(c.times, c.now())
}

// Rate evicts entries older than the window and returns the remaining count.
func (c *RateCounter) Rate() int {
	cutoff := c.now().Add(-c.window)
	i := 0
	for i < len(c.times) && c.times[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		c.times = c.times[i:]
	}
	return len(c.times)
}
