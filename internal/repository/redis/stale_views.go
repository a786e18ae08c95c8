package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
)

// StaleViewStore records which entities' cached views became stale after a
// transition. Read-side callers consume the marker to decide whether to
// bypass their cache, which gives dependent views read-after-write
// consistency across instances.
type StaleViewStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStaleViewStore constructs the store. A zero ttl falls back to ten
// minutes; markers are a refresh hint, not durable state.
func NewStaleViewStore(client *redis.Client, prefix string, ttl time.Duration) *StaleViewStore {
	if prefix == "" {
		prefix = "stale"
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StaleViewStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *StaleViewStore) key(kind domain.EntityKind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, id)
}

// MarkStale flags every referenced entity's cached views as stale.
func (s *StaleViewStore) MarkStale(ctx context.Context, refs []domain.EntityRef) error {
	if len(refs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, ref := range refs {
		pipe.Set(ctx, s.key(ref.Kind, ref.ID), "1", s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis mark stale: %w", err)
	}
	return nil
}

// ConsumeStale reports whether the entity was flagged stale and clears the
// flag, so exactly one reader pays for the refresh.
func (s *StaleViewStore) ConsumeStale(ctx context.Context, kind domain.EntityKind, id string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(kind, id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis consume stale: %w", err)
	}
	return n > 0, nil
}
