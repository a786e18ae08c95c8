package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

type ratingFixture struct {
	svc         *RatingService
	ratings     *ratingRepoMock
	events      *eventRepoMock
	invitations *invitationRepoMock
}

func newRatingFixture(events []domain.Event, invitations []domain.Invitation, ratings ...domain.Rating) *ratingFixture {
	f := &ratingFixture{
		ratings:     newRatingRepoMock(ratings...),
		events:      newEventRepoMock(events...),
		invitations: newInvitationRepoMock(invitations...),
	}
	f.svc = NewRatingService(domain.NewPermissionEngine(), f.ratings, f.events, f.invitations, &publisherMock{}, &invalidatorMock{}, zap.NewNop())
	f.svc.now = func() time.Time { return testNow }
	return f
}

func completedTestEvent(id, creatorID string) domain.Event {
	ev := pendingTestEvent(id, creatorID)
	ev.Status = domain.EventCompleted
	return ev
}

func acceptedTestInvitation(eventID, inviteeID string) domain.Invitation {
	accepted := true
	responded := testNow.Add(-24 * time.Hour)
	return domain.Invitation{
		ID:          "inv-" + inviteeID,
		EventID:     eventID,
		InviterID:   "org-1",
		InviteeID:   inviteeID,
		Accepted:    &accepted,
		RespondedAt: &responded,
	}
}

func goodScores() domain.RatingScores {
	return domain.RatingScores{Content: 5, Organization: 4, Venue: 4}
}

func TestSubmitRating(t *testing.T) {
	rater := testStudent("stu-1")

	t.Run("invited attendee rates a completed event", func(t *testing.T) {
		f := newRatingFixture(
			[]domain.Event{completedTestEvent("ev-1", "org-1")},
			[]domain.Invitation{acceptedTestInvitation("ev-1", "stu-1")},
		)
		rating, err := f.svc.SubmitRating(context.Background(), rater, SubmitRatingInput{EventID: "ev-1", Scores: goodScores(), Comment: "great talks"})
		if err != nil {
			t.Fatalf("SubmitRating: %v", err)
		}
		if rating.Comment == nil || *rating.Comment != "great talks" {
			t.Fatalf("comment = %v, want kept", rating.Comment)
		}
		if _, ok := f.ratings.ratings[rating.ID]; !ok {
			t.Fatal("rating was not persisted")
		}
	})

	t.Run("open events accept ratings from everyone", func(t *testing.T) {
		f := newRatingFixture([]domain.Event{completedTestEvent("ev-1", "org-1")}, nil)
		if _, err := f.svc.SubmitRating(context.Background(), rater, SubmitRatingInput{EventID: "ev-1", Scores: goodScores()}); err != nil {
			t.Fatalf("SubmitRating: %v", err)
		}
	})

	t.Run("non-attendee is not eligible", func(t *testing.T) {
		f := newRatingFixture(
			[]domain.Event{completedTestEvent("ev-1", "org-1")},
			[]domain.Invitation{acceptedTestInvitation("ev-1", "stu-2")},
		)
		if _, err := f.svc.SubmitRating(context.Background(), rater, SubmitRatingInput{EventID: "ev-1", Scores: goodScores()}); !errors.Is(err, ErrNotEligible) {
			t.Fatalf("err = %v, want ErrNotEligible", err)
		}
	})

	t.Run("declined invitee is not eligible", func(t *testing.T) {
		declined := acceptedTestInvitation("ev-1", "stu-1")
		no := false
		declined.Accepted = &no
		f := newRatingFixture([]domain.Event{completedTestEvent("ev-1", "org-1")}, []domain.Invitation{declined})
		if _, err := f.svc.SubmitRating(context.Background(), rater, SubmitRatingInput{EventID: "ev-1", Scores: goodScores()}); !errors.Is(err, ErrNotEligible) {
			t.Fatalf("err = %v, want ErrNotEligible", err)
		}
	})

	t.Run("window opens only after completion", func(t *testing.T) {
		f := newRatingFixture([]domain.Event{approvedTestEvent("ev-1", "org-1")}, nil)
		if _, err := f.svc.SubmitRating(context.Background(), rater, SubmitRatingInput{EventID: "ev-1", Scores: goodScores()}); !errors.Is(err, ErrNotEligible) {
			t.Fatalf("err = %v, want ErrNotEligible before completion", err)
		}
	})

	t.Run("one rating per rater", func(t *testing.T) {
		f := newRatingFixture([]domain.Event{completedTestEvent("ev-1", "org-1")}, nil)
		if _, err := f.svc.SubmitRating(context.Background(), rater, SubmitRatingInput{EventID: "ev-1", Scores: goodScores()}); err != nil {
			t.Fatalf("first SubmitRating: %v", err)
		}
		if _, err := f.svc.SubmitRating(context.Background(), rater, SubmitRatingInput{EventID: "ev-1", Scores: goodScores()}); !errors.Is(err, ErrNotEligible) {
			t.Fatalf("err = %v, want ErrNotEligible on duplicate", err)
		}
	})

	t.Run("scores outside 1 to 5 fail validation", func(t *testing.T) {
		f := newRatingFixture([]domain.Event{completedTestEvent("ev-1", "org-1")}, nil)
		bad := domain.RatingScores{Content: 6, Organization: 4, Venue: 4}
		if _, err := f.svc.SubmitRating(context.Background(), rater, SubmitRatingInput{EventID: "ev-1", Scores: bad}); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
	})
}

func TestEditRating(t *testing.T) {
	rater := testStudent("stu-1")
	existing := domain.Rating{
		ID:      "rat-1",
		EventID: "ev-1",
		RaterID: "stu-1",
		Scores:  goodScores(),
	}

	t.Run("rater updates a sub-score", func(t *testing.T) {
		f := newRatingFixture([]domain.Event{completedTestEvent("ev-1", "org-1")}, nil, existing)
		three := 3
		rating, err := f.svc.EditRating(context.Background(), rater, "ev-1", domain.RatingUpdate{Venue: &three})
		if err != nil {
			t.Fatalf("EditRating: %v", err)
		}
		if rating.Scores.Venue != 3 || rating.Scores.Content != 5 {
			t.Fatalf("scores = %+v, want venue changed only", rating.Scores)
		}
	})

	t.Run("no rating to edit", func(t *testing.T) {
		f := newRatingFixture([]domain.Event{completedTestEvent("ev-1", "org-1")}, nil)
		three := 3
		if _, err := f.svc.EditRating(context.Background(), rater, "ev-1", domain.RatingUpdate{Venue: &three}); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestListRatings(t *testing.T) {
	existing := domain.Rating{ID: "rat-1", EventID: "ev-1", RaterID: "stu-1", Scores: goodScores()}
	f := newRatingFixture([]domain.Event{completedTestEvent("ev-1", "org-1")}, nil, existing)

	ratings, err := f.svc.ListRatings(context.Background(), testStudent("stu-2"), "ev-1")
	if err != nil {
		t.Fatalf("ListRatings: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("ratings = %d, want 1", len(ratings))
	}
}
