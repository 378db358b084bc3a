package scanner

import (
	"sync"
	"time"
)

// Debouncer collapses repeated decodes of the same payload inside a window.
// The pipeline itself never dedupes; wrap the event stream with this when a
// handheld item held in front of the camera should register once.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewDebouncer constructs a debouncer with the given window. A window of
// zero or less lets everything through.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether this payload should be acted on, and records it.
func (d *Debouncer) Allow(payload string) bool {
	if d.window <= 0 {
		return true
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if seen, ok := d.last[payload]; ok && now.Sub(seen) < d.window {
		d.last[payload] = now
		return false
	}
	d.last[payload] = now
	d.prune(now)
	return true
}

func (d *Debouncer) prune(now time.Time) {
	for payload, seen := range d.last {
		if now.Sub(seen) >= d.window {
			delete(d.last, payload)
		}
	}
}
