package memory

import (
	"sync"

	"quiz-battle/internal/battle"
)

// MatchStore is an in-memory implementation of app.MatchStore, keyed by
// player id: one live match per player.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]*battle.Controller
}

func NewMatchStore() *MatchStore {
	return &MatchStore{
		matches: make(map[string]*battle.Controller),
	}
}

func (s *MatchStore) Put(playerID string, c *battle.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[playerID] = c
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
}
