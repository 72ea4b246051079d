package stats

import (
	"testing"
	"time"
)

// fakeClock is an adjustable clock for deterministic tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestRateCounter_CountsEventsInWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := NewRateCounter(time.Second, clock.Now)

	for i := 0; i < 5; i++ {
		c.Record()
		clock.Advance(100 * time.Millisecond)
	}

	if got := c.Rate(); got != 5 {
		t.Fatalf("Rate() = %d, want 5", got)
	}
}

func TestRateCounter_EvictsOldEntries(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := NewRateCounter(time.Second, clock.Now)

	c.Record()
	c.Record()
	clock.Advance(500 * time.Millisecond)
	c.Record()

	if got := c.Rate(); got != 3 {
		t.Fatalf("Rate() = %d, want 3", got)
	}

	// First two entries fall out of the window, the third survives.
	clock.Advance(600 * time.Millisecond)
	if got := c.Rate(); got != 1 {
		t.Fatalf("Rate() after partial eviction = %d, want 1", got)
	}

	clock.Advance(2 * time.Second)
	if got := c.Rate(); got != 0 {
		t.Fatalf("Rate() after full eviction = %d, want 0", got)
	}
}

func TestRateCounter_DefaultWindow(t *testing.T) {
	c := NewRateCounter(0, nil)
	if c.window != DefaultRateWindow {
		t.Fatalf("window = %v, want %v", c.window, DefaultRateWindow)
	}
}
