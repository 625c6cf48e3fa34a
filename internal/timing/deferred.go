// Package timing holds small timestamp-driven helpers for the UI layer.
// Everything is polled from the tick loop, so nothing here spawns goroutines.
package timing

import "time"

// Deferred is a cancelable one-shot action keyed on tick timestamps (ms).
// Scheduling again replaces the pending deadline.
type Deferred struct {
	due     float64
	pending bool
}

// Schedule arms the token to fire once now+delay has passed.
func (d *Deferred) Schedule(now float64, delay time.Duration) {
	d.due = now + float64(delay)/float64(time.Millisecond)
	d.pending = true
}

func (d *Deferred) Cancel() { d.pending = false }

func (d *Deferred) Pending() bool { return d.pending }

// Active reports whether the token is armed and not yet due.
func (d *Deferred) Active(now float64) bool {
	return d.pending && now < d.due
}

// Fire returns true exactly once, on the first call at or after the deadline.
func (d *Deferred) Fire(now float64) bool {
	if !d.pending || now < d.due {
		return false
	}
	d.pending = false
	return true
}

// Throttle lets at most one call through per interval.
type Throttle struct {
	Interval time.Duration
	last     float64
	primed   bool
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{Interval: interval}
}

func (t *Throttle) Allow(now float64) bool {
	if t.primed && now-t.last < float64(t.Interval)/float64(time.Millisecond) {
		return false
	}
	t.last = now
	t.primed = true
	return true
}
