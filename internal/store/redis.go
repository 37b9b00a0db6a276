package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/loginwatch/platform/internal/domain"
)

const sessionKeyPrefix = "loginwatch:session:"

// RedisSessionStore keeps session state in Redis so lock state is shared
// across detector instances and survives restarts. One JSON value per
// username, no expiry (locks only clear on explicit unlock).
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Get(ctx context.Context, username string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+username).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	sess := &domain.Session{}
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", username, err)
	}
	return sess, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.Username, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) All(ctx context.Context) (map[string]*domain.Session, error) {
	out := make(map[string]*domain.Session)

	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get session: %w", err)
		}
		sess := &domain.Session{}
		if err := json.Unmarshal(raw, sess); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", iter.Val(), err)
		}
		out[sess.Username] = sess
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan sessions: %w", err)
	}
	return out, nil
}
