package watcher

import (
	"slices"
	"sync"
	"time"
	"unique"
)

// Debouncer coalesces bursts of change notifications into one callback per quiet window.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]struct{}
	timer    *time.Timer
	window   time.Duration
	callback func(paths []string)
}

// NewDebouncer creates a Debouncer that calls callback once no path was added for window.
func NewDebouncer(window time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]struct{}),
		window:   window,
		callback: callback,
	}
}

// Add records a changed path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(path)] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Stop cancels a pending callback and drops the pending paths.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
}

// Flush runs the callback synchronously with the pending paths, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// The timer already fired and fire owns the batch.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	paths := d.take()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	paths := d.take()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// take empties the pending set and returns it sorted. Callers hold mu.
func (d *Debouncer) take() []string {
	if len(d.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.pending))
	for h := range d.pending {
		paths = append(paths, h.Value())
	}
	clear(d.pending)
	slices.Sort(paths)
	return paths
}
