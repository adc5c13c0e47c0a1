package table

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through StdAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// StdAfterFunc wraps time.AfterFunc.
func StdAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Debouncer runs only the most recent of a burst of calls, delay after
// the last one. Each Trigger stops the pending timer and issues a new one.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	afterFunc AfterFunc
	timer     Timer
	pending   func()
	gen       uint64
}

// NewDebouncer creates a debouncer. A nil afterFunc uses the real clock.
func NewDebouncer(delay time.Duration, afterFunc AfterFunc) *Debouncer {
	if afterFunc == nil {
		afterFunc = StdAfterFunc
	}
	return &Debouncer{delay: delay, afterFunc: afterFunc}
}

// Trigger replaces any pending call with fn. With a non-positive delay fn runs now.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	d.stopLocked()
	if d.delay <= 0 {
		d.mu.Unlock()
		fn()
		return
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = d.afterFunc(d.delay, func() { d.fire(gen) })
	d.mu.Unlock()
}

// Flush runs the pending call immediately. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.stopLocked()
	d.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.pending != nil
	d.stopLocked()
	return had
}

// Pending reports whether a call is waiting for its timer.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		// superseded after the timer had already fired
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
