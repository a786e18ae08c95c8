package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

func cancelRequestFixtures() (domain.Event, domain.EventCancelRequest) {
	ev := domain.Event{
		ID:        "ev-1",
		Status:    domain.EventCancelRequested,
		UpdatedAt: repoNow,
	}
	req := domain.EventCancelRequest{
		ID:          "cr-1",
		EventID:     "ev-1",
		RequesterID: "org-1",
		Reason:      "speaker withdrew",
		Status:      domain.CancelRequestPending,
		CreatedAt:   repoNow,
	}
	return ev, req
}

func TestEventCancelRequestRepository_OpenWithEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventCancelRequestRepository(mock)
	ev, req := cancelRequestFixtures()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events\.events SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs(domain.EventCancelRequested, repoNow, "ev-1", domain.EventApproved).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO events\.event_cancel_requests`).
		WithArgs("cr-1", "ev-1", "org-1", "speaker withdrew", domain.CancelRequestPending, repoNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.OpenWithEvent(context.Background(), req, ev, domain.EventApproved); err != nil {
		t.Fatalf("OpenWithEvent returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventCancelRequestRepository_OpenRollsBackOnEventConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventCancelRequestRepository(mock)
	ev, req := cancelRequestFixtures()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events\.events SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs(domain.EventCancelRequested, repoNow, "ev-1", domain.EventApproved).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	if err := repo.OpenWithEvent(context.Background(), req, ev, domain.EventApproved); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventCancelRequestRepository_ResolveWithEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventCancelRequestRepository(mock)
	ev, req := cancelRequestFixtures()
	ev.Status = domain.EventCancelled
	req.Status = domain.CancelRequestApproved
	resolved := repoNow
	req.ResolvedAt = &resolved

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events\.events SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs(domain.EventCancelled, repoNow, "ev-1", domain.EventCancelRequested).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE events\.event_cancel_requests SET status = \$1, resolved_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs(domain.CancelRequestApproved, &resolved, "cr-1", domain.CancelRequestPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = repo.ResolveWithEvent(context.Background(), req, domain.CancelRequestPending, ev, domain.EventCancelRequested)
	if err != nil {
		t.Fatalf("ResolveWithEvent returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventCancelRequestRepository_ResolveRollsBackOnRequestConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventCancelRequestRepository(mock)
	ev, req := cancelRequestFixtures()
	ev.Status = domain.EventCancelled
	req.Status = domain.CancelRequestApproved

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events\.events SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE events\.event_cancel_requests SET status = \$1, resolved_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err = repo.ResolveWithEvent(context.Background(), req, domain.CancelRequestPending, ev, domain.EventCancelRequested)
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
