package port

import (
	"context"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
)

// RoomRequestRepository handles headers together with their line items.
// UpdateItem persists one item transition and the re-derived header status
// in a single transaction; it must fail with repository.ErrConflict when
// the stored item status no longer matches expected.
type RoomRequestRepository interface {
	CreateHeader(ctx context.Context, header domain.RoomRequestHeader) error
	GetHeader(ctx context.Context, id string) (*domain.RoomRequestHeader, error)
	GetHeaderByItem(ctx context.Context, itemID string) (*domain.RoomRequestHeader, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.RoomRequestHeader, error)
	UpdateItem(ctx context.Context, header domain.RoomRequestHeader, item domain.RoomRequestItem, expected domain.RoomRequestItemStatus) error
	UpdateAllItems(ctx context.Context, header domain.RoomRequestHeader, expected domain.RoomRequestStatus) error
}

// RoomChangeRepository handles room-change requests.
type RoomChangeRepository interface {
	Create(ctx context.Context, req domain.RoomChangeRequest) error
	GetByID(ctx context.Context, id string) (*domain.RoomChangeRequest, error)
	UpdateStatus(ctx context.Context, req domain.RoomChangeRequest, expected domain.RoomChangeStatus) error
	// Approve persists the approval and replaces the room held by the
	// originating line item in one transaction. Fails with
	// repository.ErrConflict when either row moved under the caller.
	Approve(ctx context.Context, req domain.RoomChangeRequest, expected domain.RoomChangeStatus, swap domain.RoomSwap) error
}
