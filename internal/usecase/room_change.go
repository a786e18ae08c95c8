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

// CreateRoomChangeInput captures the payload for requesting a room swap on
// an already-assigned line item.
type CreateRoomChangeInput struct {
	LineItemID string
	Reason     string
	RoomTypeID string
	Capacity   int
}

// RoomChangeService orchestrates room-change requests.
type RoomChangeService struct {
	engine   *domain.PermissionEngine
	changes  port.RoomChangeRepository
	requests port.RoomRequestRepository
	effects  *effectRunner
	now      func() time.Time
}

// NewRoomChangeService constructs a RoomChangeService.
func NewRoomChangeService(
	engine *domain.PermissionEngine,
	changes port.RoomChangeRepository,
	requests port.RoomRequestRepository,
	publisher port.NotificationPublisher,
	invalidator port.ViewInvalidator,
	logger *zap.Logger,
) *RoomChangeService {
	return &RoomChangeService{
		engine:   engine,
		changes:  changes,
		requests: requests,
		effects:  newEffectRunner(publisher, invalidator, logger),
		now:      time.Now,
	}
}

// CreateRoomChange opens a swap request for an assigned line item.
func (s *RoomChangeService) CreateRoomChange(ctx context.Context, actor domain.Actor, input CreateRoomChangeInput) (*domain.RoomChangeRequest, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, fmt.Errorf("%w: a room change requires a reason", domain.ErrValidation)
	}

	header, err := s.requests.GetHeaderByItem(ctx, input.LineItemID)
	if err != nil {
		return nil, fmt.Errorf("get room request: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionRequestRoomChange, domain.ResourceRoomRequest, header.ItemPermissionContext(actor.ID, input.LineItemID)) {
		return nil, ErrPermissionDenied
	}

	item, ok := header.Item(input.LineItemID)
	if !ok || item.AssignedRoomID == nil {
		return nil, fmt.Errorf("%w: line item has no assigned room", domain.ErrInvalidTransition)
	}

	req := domain.RoomChangeRequest{
		ID:            uuid.NewString(),
		LineItemID:    item.ID,
		RequesterID:   actor.ID,
		CurrentRoomID: *item.AssignedRoomID,
		Reason:        strings.TrimSpace(input.Reason),
		RoomTypeID:    strings.TrimSpace(input.RoomTypeID),
		Capacity:      input.Capacity,
		Status:        domain.RoomChangePending,
		CreatedAt:     s.now(),
	}

	if err := s.changes.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create room change request: %w", err)
	}
	return &req, nil
}

// GetRoomChange fetches one swap request.
func (s *RoomChangeService) GetRoomChange(ctx context.Context, actor domain.Actor, id string) (*domain.RoomChangeRequest, error) {
	req, err := s.changes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room change request: %w", err)
	}
	if !s.engine.Can(actor, domain.ActionView, domain.ResourceRoomChangeRequest, req.PermissionContext(actor.ID)) {
		return nil, ErrPermissionDenied
	}
	return req, nil
}

// ApproveRoomChange grants the swap and executes the atomic room
// replacement on the originating line item before running the remaining
// side effects.
func (s *RoomChangeService) ApproveRoomChange(ctx context.Context, actor domain.Actor, id, newRoomID string) (*domain.RoomChangeRequest, error) {
	req, err := s.changes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room change request: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionApprove, domain.ResourceRoomChangeRequest, nil) {
		return nil, ErrPermissionDenied
	}

	next, out, err := req.Approve(newRoomID)
	if err != nil {
		return nil, err
	}

	if err := s.changes.Approve(ctx, next, req.Status, *out.RoomSwap); err != nil {
		return nil, fmt.Errorf("persist room change approval: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}

// RejectRoomChange declines the swap with a mandatory reason.
func (s *RoomChangeService) RejectRoomChange(ctx context.Context, actor domain.Actor, id, reason string) (*domain.RoomChangeRequest, error) {
	req, err := s.changes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room change request: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionApprove, domain.ResourceRoomChangeRequest, nil) {
		return nil, ErrPermissionDenied
	}

	next, out, err := req.Reject(reason)
	if err != nil {
		return nil, err
	}

	if err := s.changes.UpdateStatus(ctx, next, req.Status); err != nil {
		return nil, fmt.Errorf("persist room change rejection: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}

// CancelRoomChange withdraws the requester's own pending swap request.
func (s *RoomChangeService) CancelRoomChange(ctx context.Context, actor domain.Actor, id string) (*domain.RoomChangeRequest, error) {
	req, err := s.changes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room change request: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionDelete, domain.ResourceRoomChangeRequest, req.PermissionContext(actor.ID)) {
		return nil, ErrPermissionDenied
	}
	if req.RequesterID != actor.ID && !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	next, out, err := req.Cancel()
	if err != nil {
		return nil, err
	}

	if err := s.changes.UpdateStatus(ctx, next, req.Status); err != nil {
		return nil, fmt.Errorf("persist room change cancellation: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}
