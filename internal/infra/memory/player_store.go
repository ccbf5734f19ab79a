package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-battle/internal/domain"
)

// PlayerStore is an in-memory implementation of app.PlayerRepository for the
// no-postgres deployment mode. It mirrors the backend's row semantics: scores
// and coins accumulate, best streak applies a max, booster consumption fails
// without side effects when the balance cannot cover it.
type PlayerStore struct {
	startingBoosters int

	mu      sync.Mutex
	players map[string]*playerRow
}

type playerRow struct {
	displayName string
	score       int
	coins       int
	bestStreak  int
	boosters    int
}

func NewPlayerStore(startingBoosters int) *PlayerStore {
	return &PlayerStore{
		startingBoosters: startingBoosters,
		players:          make(map[string]*playerRow),
	}
}

func (s *PlayerStore) EnsurePlayer(_ context.Context, player domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.players[player.ID]; ok {
		row.displayName = player.DisplayName
		return nil
	}
	s.players[player.ID] = &playerRow{
		displayName: player.DisplayName,
		boosters:    s.startingBoosters,
	}
	return nil
}

func (s *PlayerStore) BoosterBalance(_ context.Context, playerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.players[playerID]
	if !ok {
		return 0, domain.ErrPlayerNotFound
	}
	return row.boosters, nil
}

func (s *PlayerStore) ConsumeBoosters(_ context.Context, playerID string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.players[playerID]
	if !ok {
		return 0, domain.ErrPlayerNotFound
	}
	if row.boosters < amount {
		return row.boosters, domain.ErrInsufficientBalance
	}
	row.boosters -= amount
	return row.boosters, nil
}

func (s *PlayerStore) SubmitScore(_ context.Context, playerID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	row.score += score
	return nil
}

func (s *PlayerStore) GrantCoins(_ context.Context, playerID string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	row.coins += amount
	return nil
}

func (s *PlayerStore) UpdateBestStreak(_ context.Context, playerID string, streak int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if streak > row.bestStreak {
		row.bestStreak = streak
	}
	return nil
}

func (s *PlayerStore) Ranking(_ context.Context, limit int) ([]domain.RankingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.RankingEntry, 0, len(s.players))
	for id, row := range s.players {
		entries = append(entries, domain.RankingEntry{
			PlayerID:    id,
			DisplayName: row.displayName,
			Score:       row.score,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Coins is a test hook exposing the accumulated coin total.
func (s *PlayerStore) Coins(playerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.players[playerID]; ok {
		return row.coins
	}
	return 0
}

// BestStreak is a test hook exposing the persisted best streak.
func (s *PlayerStore) BestStreak(playerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.players[playerID]; ok {
		return row.bestStreak
	}
	return 0
}
