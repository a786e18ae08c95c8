package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
)

// RoomRequestItemInput captures one room requirement of a new request.
type RoomRequestItemInput struct {
	RoomTypeID string
	Capacity   int
	RoomCount  int
	StartsAt   time.Time
	EndsAt     time.Time
}

// CreateRoomRequestInput captures the payload for a new request header.
type CreateRoomRequestInput struct {
	EventID string
	Items   []RoomRequestItemInput
}

// RoomRequestService orchestrates the two-level room-request lifecycle.
type RoomRequestService struct {
	engine   *domain.PermissionEngine
	requests port.RoomRequestRepository
	events   port.EventRepository
	effects  *effectRunner
	now      func() time.Time
}

// NewRoomRequestService constructs a RoomRequestService.
func NewRoomRequestService(
	engine *domain.PermissionEngine,
	requests port.RoomRequestRepository,
	events port.EventRepository,
	publisher port.NotificationPublisher,
	invalidator port.ViewInvalidator,
	logger *zap.Logger,
) *RoomRequestService {
	return &RoomRequestService{
		engine:   engine,
		requests: requests,
		events:   events,
		effects:  newEffectRunner(publisher, invalidator, logger),
		now:      time.Now,
	}
}

// CreateRoomRequest opens a request header with 1..N line items for an
// approved event.
func (s *RoomRequestService) CreateRoomRequest(ctx context.Context, actor domain.Actor, input CreateRoomRequestInput) (*domain.RoomRequestHeader, error) {
	if !s.engine.Can(actor, domain.ActionCreate, domain.ResourceRoomRequest, nil) {
		return nil, ErrPermissionDenied
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: a room request needs at least one line item", domain.ErrValidation)
	}

	ev, err := s.events.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev.Status != domain.EventApproved {
		return nil, fmt.Errorf("%w: rooms can only be requested for an approved event", domain.ErrInvalidTransition)
	}

	now := s.now()
	header := domain.RoomRequestHeader{
		ID:          uuid.NewString(),
		EventID:     ev.ID,
		RequesterID: actor.ID,
		Status:      domain.RoomRequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, in := range input.Items {
		if in.Capacity <= 0 || in.RoomCount <= 0 {
			return nil, fmt.Errorf("%w: line items require positive capacity and room count", domain.ErrValidation)
		}
		if !in.EndsAt.After(in.StartsAt) {
			return nil, fmt.Errorf("%w: line items require a valid time window", domain.ErrValidation)
		}
		header.Items = append(header.Items, domain.RoomRequestItem{
			ID:         uuid.NewString(),
			HeaderID:   header.ID,
			RoomTypeID: strings.TrimSpace(in.RoomTypeID),
			Capacity:   in.Capacity,
			RoomCount:  in.RoomCount,
			StartsAt:   in.StartsAt,
			EndsAt:     in.EndsAt,
			Status:     domain.RoomItemPending,
		})
	}

	if err := s.requests.CreateHeader(ctx, header); err != nil {
		return nil, fmt.Errorf("create room request: %w", err)
	}
	return &header, nil
}

// GetRoomRequest fetches one header with its items.
func (s *RoomRequestService) GetRoomRequest(ctx context.Context, actor domain.Actor, headerID string) (*domain.RoomRequestHeader, error) {
	header, err := s.requests.GetHeader(ctx, headerID)
	if err != nil {
		return nil, fmt.Errorf("get room request: %w", err)
	}
	if !s.engine.Can(actor, domain.ActionView, domain.ResourceRoomRequest, header.PermissionContext(actor.ID)) {
		return nil, ErrPermissionDenied
	}
	return header, nil
}

// ListRoomRequests returns the headers filed for one event, filtered down
// to those the actor may view.
func (s *RoomRequestService) ListRoomRequests(ctx context.Context, actor domain.Actor, eventID string) ([]domain.RoomRequestHeader, error) {
	headers, err := s.requests.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list room requests: %w", err)
	}

	visible := headers[:0]
	for _, h := range headers {
		if s.engine.Can(actor, domain.ActionView, domain.ResourceRoomRequest, h.PermissionContext(actor.ID)) {
			visible = append(visible, h)
		}
	}
	return visible, nil
}

// itemTransition runs the shared item mutation path. The action decides
// which permission rule applies: approve for facility-side processing,
// edit for requester-side changes.
func (s *RoomRequestService) itemTransition(
	ctx context.Context,
	actor domain.Actor,
	headerID, itemID string,
	action domain.Action,
	apply func(domain.RoomRequestHeader) (domain.RoomRequestHeader, domain.Outcome, error),
) (*domain.RoomRequestHeader, error) {
	header, err := s.requests.GetHeader(ctx, headerID)
	if err != nil {
		return nil, fmt.Errorf("get room request: %w", err)
	}

	if !s.engine.Can(actor, action, domain.ResourceRoomRequest, header.ItemPermissionContext(actor.ID, itemID)) {
		return nil, ErrPermissionDenied
	}

	prev, ok := header.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown line item %q", domain.ErrValidation, itemID)
	}

	next, out, err := apply(*header)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()

	item, _ := next.Item(itemID)
	if err := s.requests.UpdateItem(ctx, next, item, prev.Status); err != nil {
		return nil, fmt.Errorf("persist item transition: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}

// ApproveItem assigns a concrete room to one pending item. Availability of
// the room is checked by the caller against the room-availability
// collaborator before invoking this.
func (s *RoomRequestService) ApproveItem(ctx context.Context, actor domain.Actor, headerID, itemID, roomID, note string) (*domain.RoomRequestHeader, error) {
	return s.itemTransition(ctx, actor, headerID, itemID, domain.ActionApprove, func(h domain.RoomRequestHeader) (domain.RoomRequestHeader, domain.Outcome, error) {
		return h.AssignRoom(itemID, roomID, note)
	})
}

// RejectItem rejects one pending item with a mandatory reason.
func (s *RoomRequestService) RejectItem(ctx context.Context, actor domain.Actor, headerID, itemID, reason string) (*domain.RoomRequestHeader, error) {
	return s.itemTransition(ctx, actor, headerID, itemID, domain.ActionApprove, func(h domain.RoomRequestHeader) (domain.RoomRequestHeader, domain.Outcome, error) {
		return h.RejectItem(itemID, reason)
	})
}

// RequestItemRevision sends one pending item back to the requester.
func (s *RoomRequestService) RequestItemRevision(ctx context.Context, actor domain.Actor, headerID, itemID, note string) (*domain.RoomRequestHeader, error) {
	return s.itemTransition(ctx, actor, headerID, itemID, domain.ActionApprove, func(h domain.RoomRequestHeader) (domain.RoomRequestHeader, domain.Outcome, error) {
		return h.RequestItemRevision(itemID, note)
	})
}

// ResubmitItem returns a revision-requested item to the pending queue with
// updated requirements. Only the original requester may resubmit, and only
// items not yet processed are editable.
func (s *RoomRequestService) ResubmitItem(ctx context.Context, actor domain.Actor, headerID, itemID string, input RoomRequestItemInput) (*domain.RoomRequestHeader, error) {
	return s.itemTransition(ctx, actor, headerID, itemID, domain.ActionEdit, func(h domain.RoomRequestHeader) (domain.RoomRequestHeader, domain.Outcome, error) {
		return h.ResubmitItem(itemID, domain.RoomRequestItem{
			RoomTypeID: strings.TrimSpace(input.RoomTypeID),
			Capacity:   input.Capacity,
			RoomCount:  input.RoomCount,
			StartsAt:   input.StartsAt,
			EndsAt:     input.EndsAt,
		})
	})
}

// CancelItem withdraws one still-unprocessed item.
func (s *RoomRequestService) CancelItem(ctx context.Context, actor domain.Actor, headerID, itemID string) (*domain.RoomRequestHeader, error) {
	return s.itemTransition(ctx, actor, headerID, itemID, domain.ActionEdit, func(h domain.RoomRequestHeader) (domain.RoomRequestHeader, domain.Outcome, error) {
		return h.CancelItem(itemID)
	})
}

// CancelRequest withdraws the whole header while nothing has been
// processed yet.
func (s *RoomRequestService) CancelRequest(ctx context.Context, actor domain.Actor, headerID string) (*domain.RoomRequestHeader, error) {
	header, err := s.requests.GetHeader(ctx, headerID)
	if err != nil {
		return nil, fmt.Errorf("get room request: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionDelete, domain.ResourceRoomRequest, header.PermissionContext(actor.ID)) {
		return nil, ErrPermissionDenied
	}

	next, out, err := header.Cancel()
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()

	if err := s.requests.UpdateAllItems(ctx, next, header.Status); err != nil {
		return nil, fmt.Errorf("persist request cancellation: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}
