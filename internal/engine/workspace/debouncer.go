package workspace

import (
	"sync"
	"time"

	"go.trai.ch/delta/internal/core/domain"
)

// Debouncer coalesces rapid invalidations into one batched notification.
type Debouncer struct {
	mu       sync.Mutex
	pending  domain.Invalidation
	dirty    bool
	timer    *time.Timer
	window   time.Duration
	callback func(inv domain.Invalidation)
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(inv domain.Invalidation)) *Debouncer {
	return &Debouncer{
		window:   window,
		callback: callback,
	}
}

// Add merges inv into the pending batch and restarts the window.
func (d *Debouncer) Add(inv domain.Invalidation) {
	if inv.Empty() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = d.pending.Merge(inv)
	d.dirty = true

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// take returns and clears the pending batch. d.mu must be held.
func (d *Debouncer) take() (domain.Invalidation, bool) {
	inv, ok := d.pending, d.dirty
	d.pending, d.dirty = domain.Invalidation{}, false
	return inv, ok
}

// fire is called when the debounce window expires.
func (d *Debouncer) fire() {
	d.mu.Lock()
	inv, ok := d.take()
	d.timer = nil
	d.mu.Unlock()

	if ok && d.callback != nil {
		go d.callback(inv)
	}
}

// Flush immediately delivers the pending batch and blocks until the callback
// returns.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// Timer already fired, let it complete rather than processing twice.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	inv, ok := d.take()
	d.mu.Unlock()

	if ok && d.callback != nil {
		d.callback(inv)
	}
}
