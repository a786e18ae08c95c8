package port

import (
	"context"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
)

// NotificationPublisher delivers transition notifications to the message
// bus. Delivery is fire-and-forget; failures are logged, never surfaced to
// the caller of the transition.
type NotificationPublisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// ViewInvalidator records which entities' cached views became stale after a
// transition, so dependent detail and list views refresh on next read.
type ViewInvalidator interface {
	MarkStale(ctx context.Context, refs []domain.EntityRef) error
	ConsumeStale(ctx context.Context, kind domain.EntityKind, id string) (bool, error)
}
