package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore persists mutation attempts in Redis sorted sets, one set
// per identifier, scored by timestamp.
type RateLimitStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRateLimitStore constructs the store.
func NewRateLimitStore(client *redis.Client, prefix string, ttl time.Duration) *RateLimitStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RateLimitStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RateLimitStore) key(identifier string) string {
	return fmt.Sprintf("%s:%s", s.prefix, identifier)
}

// RecordAttempt stores an attempt timestamp and refreshes the key TTL.
func (s *RateLimitStore) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	key := s.key(identifier)
	member := redis.Z{Score: float64(at.UnixNano()), Member: at.UnixNano()}

	if err := s.client.ZAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("redis zadd: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis expire: %w", err)
		}
	}
	return nil
}

// CountAttempts returns how many attempts fall inside the window ending at
// the reference time, trimming expired entries first.
func (s *RateLimitStore) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}

	key := s.key(identifier)
	threshold := fmt.Sprintf("%f", float64(reference.Add(-window).UnixNano()))

	if err := s.client.ZRemRangeByScore(ctx, key, "-inf", threshold).Err(); err != nil {
		return 0, fmt.Errorf("redis zremrangebyscore: %w", err)
	}

	count, err := s.client.ZCount(ctx, key, threshold, fmt.Sprintf("%f", float64(reference.UnixNano()))).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zcount: %w", err)
	}
	return int(count), nil
}
