package watcher

import (
	"sync"
	"time"

	"doc-eater/internal/logging"
	"doc-eater/internal/metrics"
)

// Debouncer collapses bursts of events for the same path into a single
// trigger. Filesystem backends typically emit create+write+close
// sequences for one logical file drop; only the quiet period after the
// last event matters.
type Debouncer struct {
	interval time.Duration
	fire     func(path string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewDebouncer creates a Debouncer that calls fire once per path after
// interval of quiet.
func NewDebouncer(interval time.Duration, fire func(path string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		fire:     fire,
		timers:   make(map[string]*time.Timer),
	}
}

// OnEvent resets the path's quiet timer. Safe to call arbitrarily often
// and from multiple goroutines.
func (d *Debouncer) OnEvent(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if timer, ok := d.timers[path]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.interval, func() {
		d.expire(path, timer)
	})
	d.timers[path] = timer
}

// expire fires the trigger for a path whose timer ran out. The fire
// callback runs under the debouncer lock so Stop is a strict barrier:
// after Stop returns, no trigger fires.
func (d *Debouncer) expire(path string, timer *time.Timer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timers[path] != timer {
		// Rescheduled between expiry and lock acquisition; the newer
		// timer owns the trigger.
		return
	}
	delete(d.timers, path)

	metrics.DebounceTriggersTotal.Inc()
	logging.Debug("Debounce trigger for %s", path)
	d.fire(path)
}

// Stop cancels every pending timer. No trigger fires after Stop
// returns.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, timer := range d.timers {
		timer.Stop()
		delete(d.timers, path)
	}
}

// Pending returns the number of paths with an unexpired timer.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}
