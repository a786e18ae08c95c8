package port

import (
	"context"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
)

// EventFilter narrows event listings.
type EventFilter struct {
	Status     domain.EventStatus
	HostUnitID string
	CreatorID  string
	Limit      int
	Offset     int
}

// EventRepository handles event persistence. UpdateStatus must fail with
// repository.ErrConflict when the stored status no longer matches expected.
type EventRepository interface {
	Create(ctx context.Context, ev domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	UpdateStatus(ctx context.Context, ev domain.Event, expected domain.EventStatus) error
}

// EventCancelRequestRepository handles board-gated cancellation requests.
// OpenWithEvent and ResolveWithEvent touch the request row and the event
// row in one transaction so neither side can land without the other.
type EventCancelRequestRepository interface {
	GetByID(ctx context.Context, id string) (*domain.EventCancelRequest, error)
	GetPendingByEvent(ctx context.Context, eventID string) (*domain.EventCancelRequest, error)
	OpenWithEvent(ctx context.Context, req domain.EventCancelRequest, ev domain.Event, expected domain.EventStatus) error
	ResolveWithEvent(ctx context.Context, req domain.EventCancelRequest, expectedReq domain.EventCancelRequestStatus, ev domain.Event, expectedEv domain.EventStatus) error
}
