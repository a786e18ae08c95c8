package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

// CreateEventInput captures the payload for submitting a new event.
type CreateEventInput struct {
	Name       string
	HostUnitID string
	StartsAt   time.Time
	EndsAt     time.Time
}

// EventService orchestrates the event lifecycle: permission check, pure
// transition, optimistic persist, then side effects.
type EventService struct {
	engine  *domain.PermissionEngine
	events  port.EventRepository
	cancels port.EventCancelRequestRepository
	effects *effectRunner
	now     func() time.Time
}

// NewEventService constructs an EventService.
func NewEventService(
	engine *domain.PermissionEngine,
	events port.EventRepository,
	cancels port.EventCancelRequestRepository,
	publisher port.NotificationPublisher,
	invalidator port.ViewInvalidator,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		engine:  engine,
		events:  events,
		cancels: cancels,
		effects: newEffectRunner(publisher, invalidator, logger),
		now:     time.Now,
	}
}

// CreateEvent submits a new event into board review.
func (s *EventService) CreateEvent(ctx context.Context, actor domain.Actor, input CreateEventInput) (*domain.Event, error) {
	if !s.engine.Can(actor, domain.ActionCreate, domain.ResourceEvent, nil) {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", domain.ErrValidation)
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, fmt.Errorf("%w: event requires a valid time window", domain.ErrValidation)
	}

	hostUnit := strings.TrimSpace(input.HostUnitID)
	if hostUnit == "" {
		// Default to the unit the organizer acts for.
		if unit, ok := s.engine.GetManagedUnit(actor, domain.RoleEventOrganizer); ok {
			hostUnit = unit
		}
	}
	if hostUnit == "" {
		return nil, fmt.Errorf("%w: event requires a hosting unit", domain.ErrValidation)
	}

	now := s.now()
	ev := domain.Event{
		ID:         uuid.NewString(),
		Name:       name,
		CreatorID:  actor.ID,
		HostUnitID: hostUnit,
		Status:     domain.EventPendingBoard,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &ev, nil
}

// GetEvent fetches one event, subject to view permission.
func (s *EventService) GetEvent(ctx context.Context, actor domain.Actor, eventID string) (*domain.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !s.engine.Can(actor, domain.ActionView, domain.ResourceEvent, ev.PermissionContext(actor.ID)) {
		return nil, ErrPermissionDenied
	}
	return ev, nil
}

// ListEvents returns events matching the filter. Listings are limited to
// actors who may view events at all; per-row narrowing belongs to the
// query itself.
func (s *EventService) ListEvents(ctx context.Context, actor domain.Actor, filter port.EventFilter) ([]domain.Event, error) {
	if !s.engine.Can(actor, domain.ActionView, domain.ResourceEvent, nil) {
		return nil, ErrPermissionDenied
	}
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// transition runs the shared mutation path: permission check against the
// current snapshot, the pure transition, the guarded persist, then side
// effects.
func (s *EventService) transition(
	ctx context.Context,
	actor domain.Actor,
	eventID string,
	action domain.Action,
	apply func(domain.Event) (domain.Event, domain.Outcome, error),
) (*domain.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	if !s.engine.Can(actor, action, domain.ResourceEvent, ev.PermissionContext(actor.ID)) {
		return nil, ErrPermissionDenied
	}

	next, out, err := apply(*ev)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()

	if err := s.events.UpdateStatus(ctx, next, ev.Status); err != nil {
		return nil, fmt.Errorf("persist event transition: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}

// ApproveEvent records board approval.
func (s *EventService) ApproveEvent(ctx context.Context, actor domain.Actor, eventID, note string) (*domain.Event, error) {
	return s.transition(ctx, actor, eventID, domain.ActionApprove, func(ev domain.Event) (domain.Event, domain.Outcome, error) {
		return ev.Approve(note)
	})
}

// RejectEvent records board rejection with a mandatory reason.
func (s *EventService) RejectEvent(ctx context.Context, actor domain.Actor, eventID, reason string) (*domain.Event, error) {
	return s.transition(ctx, actor, eventID, domain.ActionApprove, func(ev domain.Event) (domain.Event, domain.Outcome, error) {
		return ev.Reject(reason)
	})
}

// RequestEventRevision sends the event back to its creator.
func (s *EventService) RequestEventRevision(ctx context.Context, actor domain.Actor, eventID, note string) (*domain.Event, error) {
	return s.transition(ctx, actor, eventID, domain.ActionApprove, func(ev domain.Event) (domain.Event, domain.Outcome, error) {
		return ev.RequestRevision(note)
	})
}

// ResubmitEvent returns a revision-requested event to board review.
func (s *EventService) ResubmitEvent(ctx context.Context, actor domain.Actor, eventID string) (*domain.Event, error) {
	return s.transition(ctx, actor, eventID, domain.ActionEdit, func(ev domain.Event) (domain.Event, domain.Outcome, error) {
		return ev.Resubmit()
	})
}

// SelfCancelEvent cancels the creator's own event before board approval.
// Cancelling an approved event must go through RequestEventCancel instead.
func (s *EventService) SelfCancelEvent(ctx context.Context, actor domain.Actor, eventID string) (*domain.Event, error) {
	return s.transition(ctx, actor, eventID, domain.ActionSelfCancel, func(ev domain.Event) (domain.Event, domain.Outcome, error) {
		return ev.SelfCancel()
	})
}

// CompleteEvent records the time-driven completion signal. The signal
// arrives from the scheduler, not from a user, so no actor permission
// applies.
func (s *EventService) CompleteEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	next, out, err := ev.Complete()
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()

	if err := s.events.UpdateStatus(ctx, next, ev.Status); err != nil {
		return nil, fmt.Errorf("persist event completion: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}

// RequestEventCancel opens a board-gated cancellation request against an
// approved event and moves the event to CANCEL_REQUESTED.
func (s *EventService) RequestEventCancel(ctx context.Context, actor domain.Actor, eventID, reason string) (*domain.EventCancelRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: cancellation request requires a reason", domain.ErrValidation)
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionRequestCancel, domain.ResourceEvent, ev.PermissionContext(actor.ID)) {
		return nil, ErrPermissionDenied
	}

	if _, err := s.cancels.GetPendingByEvent(ctx, ev.ID); err == nil {
		return nil, fmt.Errorf("cancellation request already pending: %w", repository.ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get pending cancel request: %w", err)
	}

	next, out, err := ev.MarkCancelRequested()
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()

	req := domain.EventCancelRequest{
		ID:          uuid.NewString(),
		EventID:     ev.ID,
		RequesterID: actor.ID,
		Reason:      strings.TrimSpace(reason),
		Status:      domain.CancelRequestPending,
		CreatedAt:   s.now(),
	}

	if err := s.cancels.OpenWithEvent(ctx, req, next, ev.Status); err != nil {
		return nil, fmt.Errorf("open cancel request: %w", err)
	}

	out.Invalidations = append(out.Invalidations, domain.EntityRef{Kind: domain.EntityEventCancelRequest, ID: req.ID})
	s.effects.run(ctx, out)
	return &req, nil
}

// ResolveEventCancel settles a pending cancellation request by board
// decision: approval cancels the event, rejection restores it.
func (s *EventService) ResolveEventCancel(ctx context.Context, actor domain.Actor, cancelRequestID string, approved bool) (*domain.EventCancelRequest, error) {
	req, err := s.cancels.GetByID(ctx, cancelRequestID)
	if err != nil {
		return nil, fmt.Errorf("get cancel request: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionApprove, domain.ResourceEventCancelRequest, nil) {
		return nil, ErrPermissionDenied
	}

	ev, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	nextReq, nextEvent, out, err := req.Resolve(*ev, approved, s.now())
	if err != nil {
		return nil, err
	}
	nextEvent.UpdatedAt = s.now()

	if err := s.cancels.ResolveWithEvent(ctx, nextReq, req.Status, nextEvent, ev.Status); err != nil {
		return nil, fmt.Errorf("persist cancel resolution: %w", err)
	}

	s.effects.run(ctx, out)
	return &nextReq, nil
}
