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

// ErrNotEligible indicates the actor is outside the rating window for the
// event: not completed, not attended, or already rated.
var ErrNotEligible = errors.New("not eligible to rate")

// SubmitRatingInput captures the payload for a new rating.
type SubmitRatingInput struct {
	EventID string
	Scores  domain.RatingScores
	Comment string
}

// RatingService enforces the rating window and rating edits.
type RatingService struct {
	engine      *domain.PermissionEngine
	ratings     port.RatingRepository
	events      port.EventRepository
	invitations port.InvitationRepository
	effects     *effectRunner
	now         func() time.Time
}

// NewRatingService constructs a RatingService.
func NewRatingService(
	engine *domain.PermissionEngine,
	ratings port.RatingRepository,
	events port.EventRepository,
	invitations port.InvitationRepository,
	publisher port.NotificationPublisher,
	invalidator port.ViewInvalidator,
	logger *zap.Logger,
) *RatingService {
	return &RatingService{
		engine:      engine,
		ratings:     ratings,
		events:      events,
		invitations: invitations,
		effects:     newEffectRunner(publisher, invalidator, logger),
		now:         time.Now,
	}
}

// attended reports whether the actor accepted an invitation to the event.
// Events without any invitations are open: everyone attended.
func (s *RatingService) attended(ctx context.Context, eventID, actorID string) (bool, error) {
	invs, err := s.invitations.ListByEvent(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("list invitations: %w", err)
	}
	if len(invs) == 0 {
		return true, nil
	}
	for _, inv := range invs {
		if inv.InviteeID == actorID && inv.Accepted != nil && *inv.Accepted {
			return true, nil
		}
	}
	return false, nil
}

// SubmitRating creates the actor's rating for a completed event, once.
func (s *RatingService) SubmitRating(ctx context.Context, actor domain.Actor, input SubmitRatingInput) (*domain.Rating, error) {
	if !s.engine.Can(actor, domain.ActionCreate, domain.ResourceRating, nil) {
		return nil, ErrPermissionDenied
	}

	ev, err := s.events.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	attended, err := s.attended(ctx, ev.ID, actor.ID)
	if err != nil {
		return nil, err
	}

	hasExisting := false
	if existing, err := s.ratings.GetByEventAndRater(ctx, ev.ID, actor.ID); err == nil && existing != nil {
		hasExisting = true
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup rating: %w", err)
	}

	if !domain.CanRate(*ev, attended, hasExisting) {
		return nil, ErrNotEligible
	}

	rating, err := domain.NewRating(uuid.NewString(), *ev, actor.ID, input.Scores, input.Comment, attended, hasExisting, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("create rating: %w", err)
	}

	var out domain.Outcome
	out.Invalidations = []domain.EntityRef{
		{Kind: domain.EntityRating, ID: rating.ID},
		{Kind: domain.EntityEvent, ID: ev.ID},
	}
	s.effects.run(ctx, out)
	return &rating, nil
}

// EditRating applies a partial update to the actor's own rating. Ratings
// are never deleted; the delete surface of the original API is unused.
func (s *RatingService) EditRating(ctx context.Context, actor domain.Actor, eventID string, upd domain.RatingUpdate) (*domain.Rating, error) {
	rating, err := s.ratings.GetByEventAndRater(ctx, eventID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}

	ctxFacts := &domain.ResourceContext{ActorID: actor.ID, Rating: &domain.RatingContext{RaterID: rating.RaterID}}
	if !s.engine.Can(actor, domain.ActionEdit, domain.ResourceRating, ctxFacts) {
		return nil, ErrPermissionDenied
	}

	next, out, err := rating.Apply(upd, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.ratings.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("persist rating update: %w", err)
	}

	s.effects.run(ctx, out)
	return &next, nil
}

// ListRatings returns the ratings of one event.
func (s *RatingService) ListRatings(ctx context.Context, actor domain.Actor, eventID string) ([]domain.Rating, error) {
	if !s.engine.Can(actor, domain.ActionView, domain.ResourceEvent, nil) {
		return nil, ErrPermissionDenied
	}
	ratings, err := s.ratings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}
