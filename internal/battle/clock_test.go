package battle_test

import (
	"sync"
	"time"
)

// fakeClock is a manually advanced clock shared by the countdown and
// controller tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeScheduler records scheduled callbacks instead of arming real timers.
// Tests advance the clock and run the recorded callbacks explicitly.
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

type scheduledTask struct {
	delay time.Duration
	fn    func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{}
}

func (s *fakeScheduler) Schedule(d time.Duration, f func()) *time.Timer {
	s.mu.Lock()
	s.tasks = append(s.tasks, scheduledTask{delay: d, fn: f})
	s.mu.Unlock()
	return nil
}

// Drain removes and returns all currently pending tasks. Callbacks run by the
// caller may schedule more.
func (s *fakeScheduler) Drain() []scheduledTask {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	return tasks
}

// RunPending runs the tasks pending right now, in scheduling order. Tasks
// scheduled by those callbacks stay queued for the next call.
func (s *fakeScheduler) RunPending() {
	for _, task := range s.Drain() {
		task.fn()
	}
}

// Pending reports how many tasks are waiting.
func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
