package memory

import (
	"context"
	"sync"
	"time"
)

// ProgressStore keeps the answered-question cooldown in memory. Entries
// expire after the TTL so questions rotate back into the pool.
type ProgressStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	answered map[string]map[string]time.Time // playerID -> questionID -> expiry
}

func NewProgressStore(ttl time.Duration) *ProgressStore {
	return NewProgressStoreWithClock(ttl, time.Now)
}

// NewProgressStoreWithClock is test-only for deterministic expiry.
func NewProgressStoreWithClock(ttl time.Duration, clock func() time.Time) *ProgressStore {
	return &ProgressStore{
		ttl:      ttl,
		clock:    clock,
		answered: make(map[string]map[string]time.Time),
	}
}

func (s *ProgressStore) Recent(_ context.Context, playerID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.answered[playerID]
	if !ok {
		return nil, nil
	}

	now := s.clock()
	recent := make(map[string]bool, len(entries))
	for id, expiry := range entries {
		if expiry.After(now) {
			recent[id] = true
		} else {
			delete(entries, id)
		}
	}
	if len(entries) == 0 {
		delete(s.answered, playerID)
	}
	return recent, nil
}

func (s *ProgressStore) MarkAnswered(_ context.Context, playerID string, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.answered[playerID]
	if !ok {
		entries = make(map[string]time.Time)
		s.answered[playerID] = entries
	}
	expiry := s.clock().Add(s.ttl)
	for _, id := range questionIDs {
		entries[id] = expiry
	}
	return nil
}
