package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-battle/internal/battle"
)

// MatchStore is a Redis-aware implementation of app.MatchStore.
// Notes:
//   - Controllers stay in a local map; the battle loop is in-process state and
//     cannot be serialized mid-animation.
//   - Redis marks match liveness per player, which lets peripheral features
//     (invites, presence) see who is mid-battle across instances.
type MatchStore struct {
	client  *redis.Client
	ttl     time.Duration
	mu      sync.RWMutex
	matches map[string]*battle.Controller
}

func NewMatchStore(client *redis.Client, ttl time.Duration) *MatchStore {
	return &MatchStore{
		client:  client,
		ttl:     ttl,
		matches: make(map[string]*battle.Controller),
	}
}

func (s *MatchStore) Put(playerID string, c *battle.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[playerID] = c
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(playerID), "1", s.ttl).Err()
}

func (s *MatchStore) Get(playerID string) (*battle.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.matches[playerID]
	return c, ok
}

func (s *MatchStore) Delete(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, playerID)
	_ = s.client.Del(context.Background(), s.key(playerID)).Err()
}

func (s *MatchStore) key(playerID string) string {
	return "battle:match:" + playerID
}
