package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-battle/internal/domain"
)

// PlayerStore implements app.PlayerRepository over Postgres rows. Every write
// is a single row-level statement with server-side arithmetic, so the calls
// stay idempotent-friendly: scores and coins add, best streak takes the max,
// and the booster decrement is guarded by the balance in the same statement.
type PlayerStore struct {
	pool *pgxpool.Pool
}

func NewPlayerStore(pool *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{pool: pool}
}

func (s *PlayerStore) EnsurePlayer(ctx context.Context, player domain.Player) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (id, display_name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name`,
		player.ID, player.DisplayName)
	if err != nil {
		return fmt.Errorf("ensure player: %w", err)
	}
	return nil
}

func (s *PlayerStore) BoosterBalance(ctx context.Context, playerID string) (int, error) {
	var balance int
	err := s.pool.QueryRow(ctx, `SELECT boosters FROM players WHERE id=$1`, playerID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load booster balance: %w", err)
	}
	return balance, nil
}

func (s *PlayerStore) ConsumeBoosters(ctx context.Context, playerID string, amount int) (int, error) {
	var balance int
	err := s.pool.QueryRow(ctx, `
		UPDATE players SET boosters = boosters - $2
		WHERE id = $1 AND boosters >= $2
		RETURNING boosters`,
		playerID, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrInsufficientBalance
	}
	if err != nil {
		return 0, fmt.Errorf("consume boosters: %w", err)
	}
	return balance, nil
}

func (s *PlayerStore) SubmitScore(ctx context.Context, playerID string, score int) error {
	_, err := s.pool.Exec(ctx, `UPDATE players SET score = score + $2 WHERE id = $1`, playerID, score)
	if err != nil {
		return fmt.Errorf("submit score: %w", err)
	}
	return nil
}

func (s *PlayerStore) GrantCoins(ctx context.Context, playerID string, amount int) error {
	_, err := s.pool.Exec(ctx, `UPDATE players SET coins = coins + $2 WHERE id = $1`, playerID, amount)
	if err != nil {
		return fmt.Errorf("grant coins: %w", err)
	}
	return nil
}

func (s *PlayerStore) UpdateBestStreak(ctx context.Context, playerID string, streak int) error {
	_, err := s.pool.Exec(ctx, `UPDATE players SET best_streak = GREATEST(best_streak, $2) WHERE id = $1`, playerID, streak)
	if err != nil {
		return fmt.Errorf("update best streak: %w", err)
	}
	return nil
}

func (s *PlayerStore) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, display_name, score FROM players
		ORDER BY score DESC, display_name ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("load ranking: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankingEntry
	for rows.Next() {
		var e domain.RankingEntry
		if err := rows.Scan(&e.PlayerID, &e.DisplayName, &e.Score); err != nil {
			return nil, fmt.Errorf("scan ranking row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
