package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

// RatingRepository implements rating persistence. A unique index on
// (event_id, rater_id) backs the once-per-rater invariant.
type RatingRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRatingRepository constructs the repository.
func NewRatingRepository(exec pgExecutor) *RatingRepository {
	return &RatingRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const ratingColumns = "id, event_id, rater_id, score_content, score_organization, score_venue, comment, created_at, updated_at"

// Create inserts a new rating.
func (r *RatingRepository) Create(ctx context.Context, rating domain.Rating) error {
	stmt, args, err := r.builder.Insert("events.ratings").
		Columns("id", "event_id", "rater_id", "score_content", "score_organization", "score_venue", "comment", "created_at", "updated_at").
		Values(rating.ID, rating.EventID, rating.RaterID, rating.Scores.Content, rating.Scores.Organization, rating.Scores.Venue, rating.Comment, rating.CreatedAt, rating.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert rating sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Concurrent submit lost the race on (event_id, rater_id).
			return repository.ErrConflict
		}
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

func scanRating(row pgx.Row) (*domain.Rating, error) {
	var rt domain.Rating
	if err := row.Scan(&rt.ID, &rt.EventID, &rt.RaterID, &rt.Scores.Content, &rt.Scores.Organization, &rt.Scores.Venue, &rt.Comment, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan rating: %w", err)
	}
	return &rt, nil
}

// GetByEventAndRater retrieves the rater's rating for an event.
func (r *RatingRepository) GetByEventAndRater(ctx context.Context, eventID, raterID string) (*domain.Rating, error) {
	stmt, args, err := r.builder.Select(ratingColumns).
		From("events.ratings").
		Where(squirrel.Eq{"event_id": eventID, "rater_id": raterID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select rating sql: %w", err)
	}

	return scanRating(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByEvent retrieves all ratings of one event.
func (r *RatingRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Rating, error) {
	stmt, args, err := r.builder.Select(ratingColumns).
		From("events.ratings").
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ratings sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.ID, &rt.EventID, &rt.RaterID, &rt.Scores.Content, &rt.Scores.Organization, &rt.Scores.Venue, &rt.Comment, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// Update persists a rating edit.
func (r *RatingRepository) Update(ctx context.Context, rating domain.Rating) error {
	stmt, args, err := r.builder.Update("events.ratings").
		Set("score_content", rating.Scores.Content).
		Set("score_organization", rating.Scores.Organization).
		Set("score_venue", rating.Scores.Venue).
		Set("comment", rating.Comment).
		Set("updated_at", rating.UpdatedAt).
		Where(squirrel.Eq{"id": rating.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update rating sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
