package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestStaleViewStore_MarkAndConsume(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewStaleViewStore(client, "stale", 5*time.Minute)

	ctx := context.Background()
	refs := []domain.EntityRef{
		{Kind: domain.EntityEvent, ID: "ev-1"},
		{Kind: domain.EntityRoomRequest, ID: "hdr-1"},
	}

	if err := store.MarkStale(ctx, refs); err != nil {
		t.Fatalf("MarkStale returned error: %v", err)
	}

	remaining := server.TTL("stale:event:ev-1")
	if remaining <= 0 || remaining > 5*time.Minute {
		t.Fatalf("expected ttl within (0, 5m], got %v", remaining)
	}

	stale, err := store.ConsumeStale(ctx, domain.EntityEvent, "ev-1")
	if err != nil {
		t.Fatalf("ConsumeStale returned error: %v", err)
	}
	if !stale {
		t.Fatal("expected the marker to be present")
	}

	// Consuming clears the marker: a second reader sees a fresh view.
	stale, err = store.ConsumeStale(ctx, domain.EntityEvent, "ev-1")
	if err != nil {
		t.Fatalf("ConsumeStale returned error: %v", err)
	}
	if stale {
		t.Fatal("expected the marker to be cleared after one consume")
	}

	// The other ref is untouched.
	stale, err = store.ConsumeStale(ctx, domain.EntityRoomRequest, "hdr-1")
	if err != nil {
		t.Fatalf("ConsumeStale returned error: %v", err)
	}
	if !stale {
		t.Fatal("expected the room request marker to survive")
	}
}

func TestStaleViewStore_EmptyRefsNoOp(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewStaleViewStore(client, "stale", time.Minute)

	if err := store.MarkStale(context.Background(), nil); err != nil {
		t.Fatalf("MarkStale with no refs returned error: %v", err)
	}
}

func TestStaleViewStore_ConsumeMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewStaleViewStore(client, "stale", time.Minute)

	stale, err := store.ConsumeStale(context.Background(), domain.EntityEvent, "unknown")
	if err != nil {
		t.Fatalf("ConsumeStale returned error: %v", err)
	}
	if stale {
		t.Fatal("expected a miss for an unmarked entity")
	}
}
