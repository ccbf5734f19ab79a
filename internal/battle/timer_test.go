package battle_test

import (
	"testing"
	"time"

	"quiz-battle/internal/battle"
)

func newTestCountdown(onExpire func()) (*battle.Countdown, *fakeClock, *fakeScheduler) {
	clock := newFakeClock()
	sched := newFakeScheduler()
	return battle.NewCountdownWithClock(onExpire, clock.Now, sched.Schedule), clock, sched
}

func TestCountdownTimeLeftTracksClock(t *testing.T) {
	c, clock, _ := newTestCountdown(nil)
	c.Start(10 * time.Second)

	if got := c.TimeLeft(); got != 10*time.Second {
		t.Fatalf("expected 10s left, got %v", got)
	}
	clock.Advance(4 * time.Second)
	if got := c.TimeLeft(); got != 6*time.Second {
		t.Fatalf("expected 6s left, got %v", got)
	}
	clock.Advance(7 * time.Second)
	if got := c.TimeLeft(); got != 0 {
		t.Fatalf("expected 0 left past deadline, got %v", got)
	}
}

func TestCountdownExpiresOnce(t *testing.T) {
	fired := 0
	c, clock, sched := newTestCountdown(func() { fired++ })
	c.Start(10 * time.Second)

	clock.Advance(10 * time.Second)
	sched.RunPending()

	if fired != 1 {
		t.Fatalf("expected exactly one expiry, got %d", fired)
	}
	// A second wakeup against an expired countdown must not fire again.
	sched.RunPending()
	if fired != 1 {
		t.Fatalf("expiry fired twice")
	}
}

func TestCountdownEarlyWakeupRearms(t *testing.T) {
	fired := 0
	c, clock, sched := newTestCountdown(func() { fired++ })
	c.Start(10 * time.Second)

	// Wakeup lands before the wall-clock deadline: no expiry, re-armed.
	clock.Advance(5 * time.Second)
	sched.RunPending()
	if fired != 0 {
		t.Fatalf("expired before deadline")
	}
	if sched.Pending() != 1 {
		t.Fatalf("expected a re-armed wakeup, pending=%d", sched.Pending())
	}

	clock.Advance(5 * time.Second)
	sched.RunPending()
	if fired != 1 {
		t.Fatalf("expected expiry after deadline, fired=%d", fired)
	}
}

func TestCountdownPauseFreezesRemaining(t *testing.T) {
	fired := 0
	c, clock, sched := newTestCountdown(func() { fired++ })
	c.Start(10 * time.Second)

	clock.Advance(6 * time.Second)
	c.Pause()
	if !c.Paused() {
		t.Fatalf("expected paused")
	}
	if got := c.TimeLeft(); got != 4*time.Second {
		t.Fatalf("expected 4s frozen, got %v", got)
	}

	// Time passing while paused changes nothing, and the old wakeup is stale.
	clock.Advance(time.Hour)
	sched.RunPending()
	if fired != 0 {
		t.Fatalf("expired while paused")
	}
	if got := c.TimeLeft(); got != 4*time.Second {
		t.Fatalf("pause leaked time: %v", got)
	}
}

func TestCountdownResumeFromRemainder(t *testing.T) {
	fired := 0
	c, clock, sched := newTestCountdown(func() { fired++ })
	c.Start(10 * time.Second)

	clock.Advance(6 * time.Second)
	c.Pause()
	clock.Advance(30 * time.Second)
	c.Resume()

	if got := c.TimeLeft(); got != 4*time.Second {
		t.Fatalf("expected resume from 4s remainder, got %v", got)
	}

	clock.Advance(4 * time.Second)
	sched.RunPending()
	if fired != 1 {
		t.Fatalf("expected expiry 4s after resume, fired=%d", fired)
	}
}

func TestCountdownExtendPushesDeadline(t *testing.T) {
	fired := 0
	c, clock, sched := newTestCountdown(func() { fired++ })
	c.Start(10 * time.Second)

	clock.Advance(8 * time.Second)
	c.Extend(10 * time.Second)

	if got := c.TimeLeft(); got != 12*time.Second {
		t.Fatalf("expected 12s after extend, got %v", got)
	}
	if got := c.MaxDuration(); got != 20*time.Second {
		t.Fatalf("expected max duration to grow to 20s, got %v", got)
	}

	// The pre-extend wakeup is stale.
	clock.Advance(2 * time.Second)
	sched.RunPending()
	if fired != 0 {
		t.Fatalf("stale wakeup fired after extend")
	}

	clock.Advance(10 * time.Second)
	sched.RunPending()
	if fired != 1 {
		t.Fatalf("expected expiry at the extended deadline, fired=%d", fired)
	}
}

func TestCountdownExtendWhilePaused(t *testing.T) {
	c, clock, _ := newTestCountdown(nil)
	c.Start(10 * time.Second)

	clock.Advance(7 * time.Second)
	c.Pause()
	c.Extend(10 * time.Second)

	if got := c.TimeLeft(); got != 13*time.Second {
		t.Fatalf("expected frozen remainder to grow, got %v", got)
	}
	c.Resume()
	if got := c.TimeLeft(); got != 13*time.Second {
		t.Fatalf("expected 13s after resume, got %v", got)
	}
}

func TestCountdownStopSuppressesExpiry(t *testing.T) {
	fired := 0
	c, clock, sched := newTestCountdown(func() { fired++ })
	c.Start(10 * time.Second)

	c.Stop()
	clock.Advance(time.Minute)
	sched.RunPending()

	if fired != 0 {
		t.Fatalf("expiry fired after stop")
	}
	if got := c.TimeLeft(); got != 0 {
		t.Fatalf("expected 0 after stop, got %v", got)
	}
}

func TestCountdownResetDiscardsOldExpiry(t *testing.T) {
	fired := 0
	c, clock, sched := newTestCountdown(func() { fired++ })
	c.Start(10 * time.Second)

	clock.Advance(10 * time.Second)
	c.Reset(10 * time.Second)
	sched.RunPending() // old wakeup is stale, new one is not due yet

	if fired != 0 {
		t.Fatalf("stale expiry survived the reset")
	}
	if got := c.TimeLeft(); got != 10*time.Second {
		t.Fatalf("expected fresh 10s, got %v", got)
	}
}

func TestCountdownLowTime(t *testing.T) {
	c, clock, _ := newTestCountdown(nil)
	c.Start(10 * time.Second)

	if c.LowTime() {
		t.Fatalf("low time at 10s")
	}
	clock.Advance(7 * time.Second)
	if !c.LowTime() {
		t.Fatalf("expected low time at 3s left")
	}
	clock.Advance(3 * time.Second)
	if c.LowTime() {
		t.Fatalf("low time should clear at 0")
	}
}
