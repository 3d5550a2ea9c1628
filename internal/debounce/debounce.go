// Package debounce delays free-text search input until the user stops
// typing. Each input replaces the pending value and restarts the quiet
// period; when the period elapses the pending value is committed once.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 300 * time.Millisecond

// Debouncer buffers one pending string and commits it after a quiet
// period. It is safe for concurrent use. The commit callback runs without
// the debouncer's lock held. Commits never overlap and arrive in the order
// their values were taken, so a slow commit of an older value cannot land
// after a newer one.
type Debouncer struct {
	mu         sync.Mutex
	clock      Clock
	delay      time.Duration
	commit     func(string)
	timer      Timer
	gen        uint64
	pending    string
	hasPending bool

	// next is the value waiting for the running commit to return.
	next       string
	hasNext    bool
	delivering bool
}

// New returns a debouncer. A negative delay selects DefaultDelay; a zero
// delay commits every input immediately. A nil clock selects Real.
func New(delay time.Duration, clock Clock, commit func(string)) *Debouncer {
	if delay < 0 {
		delay = DefaultDelay
	}
	if clock == nil {
		clock = Real()
	}
	if commit == nil {
		commit = func(string) {}
	}
	return &Debouncer{clock: clock, delay: delay, commit: commit}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Input records s as the pending value and restarts the quiet period,
// superseding any earlier pending value.
func (d *Debouncer) Input(s string) {
	if d.delay == 0 {
		d.Flush(s)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.pending = s
	d.hasPending = true
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer that could not be stopped in time belongs to an older input.
	if gen != d.gen || !d.hasPending {
		d.mu.Unlock()
		return
	}
	d.deliverLocked(d.takeLocked())
	d.mu.Unlock()
}

// deliverLocked hands s to the commit callback. If another commit is
// running, s replaces any value queued behind it and that goroutine
// delivers it when its commit returns. A commit callback that flushes a
// new value therefore returns before the new value is committed.
func (d *Debouncer) deliverLocked(s string) {
	d.next, d.hasNext = s, true
	if d.delivering {
		return
	}
	d.delivering = true
	for d.hasNext {
		v := d.next
		d.next, d.hasNext = "", false
		d.mu.Unlock()
		d.commit(v)
		d.mu.Lock()
	}
	d.delivering = false
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) takeLocked() string {
	s := d.pending
	d.pending = ""
	d.hasPending = false
	d.timer = nil
	return s
}

// Flush commits s immediately, cancelling any pending value.
func (d *Debouncer) Flush(s string) {
	d.mu.Lock()
	d.stopLocked()
	d.pending = s
	d.hasPending = true
	d.deliverLocked(d.takeLocked())
	d.mu.Unlock()
}

// Cancel drops the pending value without committing it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.pending = ""
	d.hasPending = false
}

// Pending returns the value waiting to be committed.
func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.hasPending
}
