package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressStore keeps the answered-question cooldown as a Redis set per
// player with a rolling TTL.
type ProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{client: client, ttl: ttl}
}

func (s *ProgressStore) Recent(ctx context.Context, playerID string) (map[string]bool, error) {
	ids, err := s.client.SMembers(ctx, s.key(playerID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	recent := make(map[string]bool, len(ids))
	for _, id := range ids {
		recent[id] = true
	}
	return recent, nil
}

func (s *ProgressStore) MarkAnswered(ctx context.Context, playerID string, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	key := s.key(playerID)
	members := make([]interface{}, len(questionIDs))
	for i, id := range questionIDs {
		members[i] = id
	}
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, key, members...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *ProgressStore) key(playerID string) string {
	return "battle:answered:" + playerID
}
