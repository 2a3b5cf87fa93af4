// Package stream follows growing text sources and feeds their words to a
// player.
package stream

import (
	"time"

	"github.com/dgnsrekt/wordrunner/rsvp"
	"golang.org/x/time/rate"
)

// Throttle runs a function at most once per window. Calls that arrive inside
// the window collapse into one run at the end of it, so the last call is
// never lost. It must only be used from the loop.
type Throttle struct {
	loop    rsvp.Loop
	fn      func()
	window  time.Duration
	limiter *rate.Limiter

	pending bool
	cancel  func()
	res     *rate.Reservation
}

// NewThrottle creates a throttle around fn.
func NewThrottle(loop rsvp.Loop, window time.Duration, fn func()) *Throttle {
	t := &Throttle{loop: loop, fn: fn}
	t.SetWindow(window)
	return t
}

// Window returns the current throttle window.
func (t *Throttle) Window() time.Duration {
	return t.window
}

// SetWindow changes the window. A window of zero disables throttling.
func (t *Throttle) SetWindow(window time.Duration) {
	if window < 0 {
		window = 0
	}
	if t.limiter != nil && window == t.window {
		return
	}
	t.window = window

	limit := rate.Inf
	if window > 0 {
		limit = rate.Every(window)
	}
	if t.limiter == nil {
		t.limiter = rate.NewLimiter(limit, 1)
		return
	}
	t.limiter.SetLimitAt(t.loop.Now(), limit)
}

// Trigger asks for fn to run. It runs now when the window allows it and is
// otherwise deferred to the end of the window.
func (t *Throttle) Trigger() {
	if t.pending {
		return
	}

	now := t.loop.Now()
	res := t.limiter.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	if delay <= 0 {
		t.fn()
		return
	}

	t.pending = true
	t.res = res
	t.cancel = t.loop.After(delay, func() {
		if !t.pending {
			return
		}
		t.pending = false
		t.res = nil
		t.cancel = nil
		t.fn()
	})
}

// Pending reports whether a deferred run is scheduled.
func (t *Throttle) Pending() bool {
	return t.pending
}

// Flush runs a deferred call immediately.
func (t *Throttle) Flush() {
	if !t.pending {
		return
	}
	t.Stop()
	t.fn()
}

// Stop drops a deferred call without running it.
func (t *Throttle) Stop() {
	if !t.pending {
		return
	}
	t.pending = false
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.res != nil {
		t.res.CancelAt(t.loop.Now())
		t.res = nil
	}
}
