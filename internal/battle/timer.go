package battle

import (
	"sync"
	"time"
)

// lowTimeThreshold is the remaining time under which the presentation layer
// shows the countdown as critical.
const lowTimeThreshold = 3 * time.Second

// scheduleFunc schedules f to run after d. Swapped out in tests.
type scheduleFunc func(d time.Duration, f func()) *time.Timer

// Countdown is a wall-clock deadline countdown. Remaining time is always
// recomputed from the absolute deadline, never decremented tick by tick, so a
// suspended process cannot stretch perceived time. The expiry callback fires
// at most once per active countdown; Reset re-arms it.
type Countdown struct {
	mu       sync.Mutex
	now      func() time.Time
	schedule scheduleFunc

	deadline    time.Time
	maxDuration time.Duration
	paused      bool
	remaining   time.Duration // frozen remainder while paused
	expired     bool
	gen         int
	timer       *time.Timer
	onExpire    func()
}

// NewCountdown returns a countdown driven by the real clock. onExpire is
// invoked from a timer goroutine once the deadline passes.
func NewCountdown(onExpire func()) *Countdown {
	return NewCountdownWithClock(onExpire, time.Now, time.AfterFunc)
}

// NewCountdownWithClock is test-only for deterministic time.
func NewCountdownWithClock(onExpire func(), now func() time.Time, schedule scheduleFunc) *Countdown {
	return &Countdown{now: now, schedule: schedule, onExpire: onExpire}
}

// Start begins a fresh countdown of the given duration.
func (c *Countdown) Start(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(duration)
}

// Reset re-arms the countdown for a new duration, discarding any pending
// expiry from the previous one.
func (c *Countdown) Reset(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(duration)
}

func (c *Countdown) resetLocked(duration time.Duration) {
	c.gen++
	c.stopTimerLocked()
	c.deadline = c.now().Add(duration)
	c.maxDuration = duration
	c.paused = false
	c.expired = false
	c.armLocked(duration)
}

// Pause freezes the remaining time. No-op if already paused or expired.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused || c.expired {
		return
	}
	c.remaining = c.deadline.Sub(c.now())
	if c.remaining < 0 {
		c.remaining = 0
	}
	c.paused = true
	c.gen++
	c.stopTimerLocked()
}

// Resume recomputes the deadline from the remainder frozen at pause time; it
// never restarts from the full duration.
func (c *Countdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused || c.expired {
		return
	}
	c.paused = false
	c.deadline = c.now().Add(c.remaining)
	c.armLocked(c.remaining)
}

// Extend pushes the existing deadline out by amount without restarting the
// countdown. The displayed maximum grows by the same amount.
func (c *Countdown) Extend(amount time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired {
		return
	}
	c.maxDuration += amount
	if c.paused {
		c.remaining += amount
		return
	}
	c.deadline = c.deadline.Add(amount)
	c.gen++
	c.stopTimerLocked()
	c.armLocked(c.deadline.Sub(c.now()))
}

// Stop cancels the countdown without firing expiry.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.expired = true
	c.stopTimerLocked()
}

// TimeLeft is the remaining time, zero-floored.
func (c *Countdown) TimeLeft() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeLeftLocked()
}

func (c *Countdown) timeLeftLocked() time.Duration {
	if c.expired {
		return 0
	}
	if c.paused {
		return c.remaining
	}
	left := c.deadline.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}

// LowTime reports whether the countdown is in its final seconds.
func (c *Countdown) LowTime() bool {
	left := c.TimeLeft()
	return left > 0 && left <= lowTimeThreshold
}

// Paused reports whether the countdown is currently frozen.
func (c *Countdown) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// MaxDuration is the countdown's full span including extensions.
func (c *Countdown) MaxDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxDuration
}

func (c *Countdown) armLocked(in time.Duration) {
	if c.schedule == nil {
		return
	}
	if in < 0 {
		in = 0
	}
	gen := c.gen
	c.timer = c.schedule(in, func() { c.fire(gen) })
}

// fire runs when a scheduled wakeup lands. A stale generation means the
// countdown was reset, paused, or extended since scheduling; an early wakeup
// against the wall clock re-arms for the true remainder.
func (c *Countdown) fire(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.expired || c.paused {
		c.mu.Unlock()
		return
	}
	if left := c.deadline.Sub(c.now()); left > 0 {
		c.armLocked(left)
		c.mu.Unlock()
		return
	}
	c.expired = true
	cb := c.onExpire
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (c *Countdown) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
