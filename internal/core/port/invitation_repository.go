package port

import (
	"context"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
)

// InvitationRepository handles invitation persistence. Update must fail
// with repository.ErrConflict when the stored invitation already carries a
// response or revocation.
type InvitationRepository interface {
	Create(ctx context.Context, inv domain.Invitation) error
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Invitation, error)
	GetByEventAndInvitee(ctx context.Context, eventID, inviteeID string) (*domain.Invitation, error)
	Update(ctx context.Context, inv domain.Invitation) error
}

// RatingRepository handles rating persistence.
type RatingRepository interface {
	Create(ctx context.Context, r domain.Rating) error
	GetByEventAndRater(ctx context.Context, eventID, raterID string) (*domain.Rating, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Rating, error)
	Update(ctx context.Context, r domain.Rating) error
}
