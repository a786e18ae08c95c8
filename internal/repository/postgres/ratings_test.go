package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

func testRating() domain.Rating {
	comment := "great talks"
	return domain.Rating{
		ID:      "rt-1",
		EventID: "ev-1",
		RaterID: "stu-1",
		Scores: domain.RatingScores{
			Content:      5,
			Organization: 4,
			Venue:        4,
		},
		Comment:   &comment,
		CreatedAt: repoNow,
		UpdatedAt: repoNow,
	}
}

func TestRatingRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRatingRepository(mock)
	rating := testRating()

	mock.ExpectExec(`INSERT INTO events\.ratings`).
		WithArgs("rt-1", "ev-1", "stu-1", 5, 4, 4, rating.Comment, repoNow, repoNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), rating); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRatingRepository_CreateDuplicateIsConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRatingRepository(mock)

	// A concurrent submit for the same (event, rater) trips the unique
	// index; the caller must see a plain conflict, not a raw pg error.
	mock.ExpectExec(`INSERT INTO events\.ratings`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ratings_event_id_rater_id_key"})

	if err := repo.Create(context.Background(), testRating()); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
