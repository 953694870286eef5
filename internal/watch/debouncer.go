package watch

import (
	"context"
	"sync"
	"time"

	"github.com/standardbeagle/sauco/internal/debug"
)

// debouncer batches file events so a burst of writes to one file is analyzed once
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]EventType
	kick    chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]EventType),
		kick:    make(chan struct{}, 1),
	}
}

// add records the latest event for path and restarts the quiet period
func (d *debouncer) add(path string, eventType EventType) {
	d.mu.Lock()
	if prev, ok := d.pending[path]; ok && prev == EventCreate && eventType == EventWrite {
		// a file written right after creation is still new
		eventType = EventCreate
	}
	d.pending[path] = eventType
	d.mu.Unlock()

	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// take empties the pending set
func (d *debouncer) take() map[string]EventType {
	d.mu.Lock()
	defer d.mu.Unlock()

	events := d.pending
	d.pending = make(map[string]EventType)
	return events
}

// pendingCount returns the number of paths waiting for the quiet period to end
func (d *debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// run calls flush once no event has arrived for the delay. It returns when ctx
// ends; events still pending then are dropped.
func (d *debouncer) run(ctx context.Context, flush func(map[string]EventType)) {
	timer := time.NewTimer(d.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if n := d.pendingCount(); n > 0 {
				debug.LogWatch("dropping %d pending events on shutdown\n", n)
			}
			return

		case <-d.kick:
			timer.Reset(d.delay)

		case <-timer.C:
			if events := d.take(); len(events) > 0 {
				flush(events)
			}
		}
	}
}
