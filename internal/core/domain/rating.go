package domain

import (
	"strings"
	"time"
)

// RatingScores holds the three 1–5 sub-scores of one rating.
type RatingScores struct {
	Content      int
	Organization int
	Venue        int
}

// Valid reports whether every sub-score is within 1–5.
func (s RatingScores) Valid() bool {
	for _, v := range []int{s.Content, s.Organization, s.Venue} {
		if v < 1 || v > 5 {
			return false
		}
	}
	return true
}

// Rating is one participant's rating of a completed event. At most one per
// (event, rater); editable by its rater afterwards, never deleted.
type Rating struct {
	ID        string
	EventID   string
	RaterID   string
	Scores    RatingScores
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanRate is the rating-window eligibility predicate: the event must be
// completed, the actor must have attended (accepted invitation, or the
// event was open), and no rating by the actor may exist yet.
func CanRate(ev Event, attended bool, hasExistingRating bool) bool {
	return ev.Status == EventCompleted && attended && !hasExistingRating
}

// NewRating validates and builds a rating snapshot.
func NewRating(id string, ev Event, raterID string, scores RatingScores, comment string, attended, hasExisting bool, at time.Time) (Rating, error) {
	if !CanRate(ev, attended, hasExisting) {
		return Rating{}, invalidTransition(EntityRating, string(ev.Status), "rate")
	}
	if !scores.Valid() {
		return Rating{}, validationErr("scores must be between 1 and 5")
	}

	r := Rating{
		ID:        id,
		EventID:   ev.ID,
		RaterID:   raterID,
		Scores:    scores,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		r.Comment = &trimmed
	}
	return r, nil
}

// RatingUpdate carries a partial field update; nil fields keep their
// current value.
type RatingUpdate struct {
	Content      *int
	Organization *int
	Venue        *int
	Comment      *string
}

// Apply merges the partial update into the rating. Only the original rater
// edits; the permission layer enforces ownership.
func (r Rating) Apply(upd RatingUpdate, at time.Time) (Rating, Outcome, error) {
	next := r
	if upd.Content != nil {
		next.Scores.Content = *upd.Content
	}
	if upd.Organization != nil {
		next.Scores.Organization = *upd.Organization
	}
	if upd.Venue != nil {
		next.Scores.Venue = *upd.Venue
	}
	if !next.Scores.Valid() {
		return r, Outcome{}, validationErr("scores must be between 1 and 5")
	}
	if upd.Comment != nil {
		trimmed := strings.TrimSpace(*upd.Comment)
		if trimmed == "" {
			next.Comment = nil
		} else {
			next.Comment = &trimmed
		}
	}
	next.UpdatedAt = at

	var out Outcome
	out.invalidate(EntityRating, r.ID)
	out.invalidate(EntityEvent, r.EventID)
	return next, out, nil
}
