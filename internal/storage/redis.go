package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rrstudy/internal/models"
)

const (
	redisKeyPrefix = "rrstudy:session:"
	redisIndexKey  = "rrstudy:sessions"
)

// RedisStore keeps each session as a JSON value, with a sorted set of
// session IDs scored by update time for listing
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db)
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sessionKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (s *RedisStore) SaveProgress(ctx context.Context, saved models.SavedSession) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(saved.SessionID), data, 0)
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{
			Score:  float64(saved.UpdatedAt.UnixMilli()),
			Member: saved.SessionID,
		})
		return nil
	})
	if err != nil {
		return unavailable("save session", err)
	}
	return nil
}

func (s *RedisStore) LoadProgress(ctx context.Context, sessionID string) (models.SavedSession, bool, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.SavedSession{}, false, nil
	}
	if err != nil {
		return models.SavedSession{}, false, unavailable("load session", err)
	}

	var saved models.SavedSession
	if err := json.Unmarshal(data, &saved); err != nil {
		return models.SavedSession{}, false, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return saved, true, nil
}

func (s *RedisStore) ClearProgress(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(sessionID))
		pipe.ZRem(ctx, redisIndexKey, sessionID)
		return nil
	})
	if err != nil {
		return unavailable("clear session", err)
	}
	return nil
}

func (s *RedisStore) ListSessions(ctx context.Context) ([]models.StoredSession, error) {
	ids, err := s.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, unavailable("list sessions", err)
	}

	sessions := make([]models.StoredSession, 0, len(ids))
	for _, id := range ids {
		saved, found, err := s.LoadProgress(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		sessions = append(sessions, saved.Summary())
	}
	return sessions, nil
}
