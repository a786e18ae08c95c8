package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

// ErrAlreadyInvited indicates the invitee already has an invitation for
// the event.
var ErrAlreadyInvited = errors.New("already invited")

// InvitationService orchestrates the invitation lifecycle.
type InvitationService struct {
	engine      *domain.PermissionEngine
	invitations port.InvitationRepository
	events      port.EventRepository
	effects     *effectRunner
	now         func() time.Time
}

// NewInvitationService constructs an InvitationService.
func NewInvitationService(
	engine *domain.PermissionEngine,
	invitations port.InvitationRepository,
	events port.EventRepository,
	publisher port.NotificationPublisher,
	invalidator port.ViewInvalidator,
	logger *zap.Logger,
) *InvitationService {
	return &InvitationService{
		engine:      engine,
		invitations: invitations,
		events:      events,
		effects:     newEffectRunner(publisher, invalidator, logger),
		now:         time.Now,
	}
}

// Invite creates a pending invitation for one invitee. Only the event's
// creator manages its participants.
func (s *InvitationService) Invite(ctx context.Context, actor domain.Actor, eventID, inviteeID string) (*domain.Invitation, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionCreate, domain.ResourceInvitation, ev.PermissionContext(actor.ID)) {
		return nil, ErrPermissionDenied
	}
	if ev.Status != domain.EventApproved {
		return nil, fmt.Errorf("%w: invitations require an approved event", domain.ErrInvalidTransition)
	}

	if existing, err := s.invitations.GetByEventAndInvitee(ctx, eventID, inviteeID); err == nil && existing != nil && existing.RevokedAt == nil {
		return nil, ErrAlreadyInvited
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup invitation: %w", err)
	}

	inv := domain.Invitation{
		ID:        uuid.NewString(),
		EventID:   eventID,
		InviterID: actor.ID,
		InviteeID: inviteeID,
		CreatedAt: s.now(),
	}

	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	var out domain.Outcome
	out.Notifications = []domain.Notification{{
		RecipientID: inviteeID,
		Template:    domain.NotifyInvitationCreated,
		Context:     map[string]string{"event_id": eventID, "event_name": ev.Name},
	}}
	s.effects.run(ctx, out)
	return &inv, nil
}

// Respond records the invitee's accept/decline answer. A second response
// is an invalid transition.
func (s *InvitationService) Respond(ctx context.Context, actor domain.Actor, invitationID string, accepted bool, declineReason string) (*domain.Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionEdit, domain.ResourceInvitation, inv.PermissionContext(actor.ID)) {
		// The permission context already denies non-invitees and settled
		// invitations; distinguish the latter so the caller sees an
		// InvalidTransition, not a blanket deny.
		if inv.InviteeID == actor.ID && !inv.Pending() {
			return nil, fmt.Errorf("%w: invitation already settled", domain.ErrInvalidTransition)
		}
		return nil, ErrPermissionDenied
	}

	next, out, err := inv.Respond(accepted, declineReason, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.invitations.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("persist invitation response: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}

// Revoke withdraws a pending invitation. Forbidden once a response exists.
func (s *InvitationService) Revoke(ctx context.Context, actor domain.Actor, invitationID string) (*domain.Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	if !s.engine.Can(actor, domain.ActionDelete, domain.ResourceInvitation, inv.PermissionContext(actor.ID)) {
		if inv.InviterID == actor.ID && !inv.Pending() {
			return nil, fmt.Errorf("%w: invitation already settled", domain.ErrInvalidTransition)
		}
		return nil, ErrPermissionDenied
	}

	next, out, err := inv.Revoke(s.now())
	if err != nil {
		return nil, err
	}

	if err := s.invitations.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("persist invitation revocation: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}

// ListByEvent returns the invitations of one event.
func (s *InvitationService) ListByEvent(ctx context.Context, actor domain.Actor, eventID string) ([]domain.Invitation, error) {
	if !s.engine.Can(actor, domain.ActionView, domain.ResourceInvitation, nil) {
		return nil, ErrPermissionDenied
	}
	invs, err := s.invitations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}
