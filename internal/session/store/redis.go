package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"housemonitor/internal/session/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hm:session:v1:"

// RedisStore keeps sessions as JSON values with a Redis TTL, so they survive
// restarts and can be shared between replicas.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore returns a Store backed by client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Key formats the Redis key for a session id.
func Key(id string) string {
	return keyPrefix + id
}

// Get returns the session for id, or nil when the key is missing or expired.
func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Save writes sess with SET ... EX ttl.
func (s *RedisStore) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, Key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes the session key.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
