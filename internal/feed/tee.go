package feed

import (
	"log"
	"sync"

	"gem-sniper/internal/domain"
)

// teeFeed forwards events from an underlying feed while mirroring each one
// into a recorder.
type teeFeed struct {
	Feed
	events    chan domain.FeedEvent
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Tee wraps a feed so that every event it delivers is also written to the
// recorder. Recording failures are logged and do not interrupt the stream.
// The recorder stays open after Close; the caller owns its lifetime.
func Tee(source Feed, rec *Recorder, logger *log.Logger) Feed {
	if logger == nil {
		logger = log.Default()
	}
	t := &teeFeed{
		Feed:   source,
		events: make(chan domain.FeedEvent),
		done:   make(chan struct{}),
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(t.events)
		for {
			select {
			case ev, ok := <-source.Events():
				if !ok {
					return
				}
				if err := rec.Record(ev); err != nil {
					logger.Printf("[feed] capture write failed: %v", err)
				}
				select {
				case t.events <- ev:
				case <-t.done:
					return
				}
			case <-t.done:
				return
			}
		}
	}()
	return t
}

func (t *teeFeed) Events() <-chan domain.FeedEvent {
	return t.events
}

// Close stops the forwarding goroutine, even when nobody is draining the
// tee'd stream anymore, and closes the underlying feed.
func (t *teeFeed) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.closeErr = t.Feed.Close()
		t.wg.Wait()
	})
	return t.closeErr
}

var _ Feed = (*teeFeed)(nil)
