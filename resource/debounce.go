package resource

import (
	"sync"
	"time"
)

// debouncer runs the last function passed to Trigger once no further
// Trigger call arrived for wait. There is no leading-edge call.
type debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
	closed  bool
}

func newDebouncer(wait time.Duration) *debouncer {
	return &debouncer{wait: wait}
}

// Trigger schedules fn, replacing any pending function.
// With a non-positive wait fn runs synchronously.
func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	if d.wait <= 0 {
		d.stopLocked()
		d.mu.Unlock()
		fn()
		return
	}

	d.stopLocked()
	d.pending = fn
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
	d.mu.Unlock()
}

// fire runs the pending function if no later Trigger, Flush or Close
// superseded the timer that called it.
func (d *debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.gen++
	d.mu.Unlock()

	fn()
}

// Flush runs the pending function now, if any.
func (d *debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.stopLocked()
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Close drops the pending function and ignores later Trigger calls.
func (d *debouncer) Close() {
	d.mu.Lock()
	d.stopLocked()
	d.closed = true
	d.mu.Unlock()
}

// stopLocked invalidates the current timer. Callers hold d.mu.
func (d *debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
