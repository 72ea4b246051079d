package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gem-sniper/internal/domain"
)

// Recorder appends feed events to a JSONL capture stream that Replay can
// serve back later. Safe for use from a single goroutine per Record call
// site; writes are serialized internally.
type Recorder struct {
	mu  sync.Mutex
	w   *bufio.Writer
	c   io.Closer
	now func() time.Time
}

// NewRecorder creates a recorder over the given stream.
func NewRecorder(w io.WriteCloser) *Recorder {
	return &Recorder{
		w:   bufio.NewWriter(w),
		c:   w,
		now: time.Now,
	}
}

// CreateRecorder creates (or truncates) a capture file and records into it.
func CreateRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture %s: %w", path, err)
	}
	return NewRecorder(f), nil
}

// Record appends one event to the capture.
func (r *Recorder) Record(ev domain.FeedEvent) error {
	line, err := json.Marshal(capturedEvent{At: r.now(), Event: ev})
	if err != nil {
		return fmt.Errorf("marshal capture line: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.w.Write(line); err != nil {
		return fmt.Errorf("write capture line: %w", err)
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write capture line: %w", err)
	}
	return nil
}

// Close flushes and closes the capture.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("flush capture: %w", err)
	}
	return r.c.Close()
}
