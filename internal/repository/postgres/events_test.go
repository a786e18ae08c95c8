package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

var repoNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func TestEventRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "creator_id", "host_unit_id", "status", "starts_at", "ends_at", "created_at", "updated_at"}).
		AddRow("ev-1", "Career fair", "org-1", "unit-1", domain.EventApproved, repoNow, repoNow.Add(4*time.Hour), repoNow, repoNow)

	mock.ExpectQuery(`SELECT .+ FROM events\.events WHERE id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(rows)

	ev, err := repo.GetByID(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if ev.Name != "Career fair" || ev.Status != domain.EventApproved {
		t.Fatalf("event = %+v", ev)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM events\.events WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "creator_id", "host_unit_id", "status", "starts_at", "ends_at", "created_at", "updated_at"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	ev := domain.Event{
		ID:         "ev-1",
		Name:       "Career fair",
		CreatorID:  "org-1",
		HostUnitID: "unit-1",
		Status:     domain.EventPendingBoard,
		StartsAt:   repoNow,
		EndsAt:     repoNow.Add(4 * time.Hour),
		CreatedAt:  repoNow,
		UpdatedAt:  repoNow,
	}

	mock.ExpectExec(`INSERT INTO events\.events`).
		WithArgs(ev.ID, ev.Name, ev.CreatorID, ev.HostUnitID, ev.Status, ev.StartsAt, ev.EndsAt, ev.CreatedAt, ev.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), ev); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventRepository_UpdateStatus_GuardsExpectedState(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	ev := domain.Event{ID: "ev-1", Status: domain.EventApproved, UpdatedAt: repoNow}

	mock.ExpectExec(`UPDATE events\.events SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs(ev.Status, ev.UpdatedAt, ev.ID, domain.EventPendingBoard).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateStatus(context.Background(), ev, domain.EventPendingBoard); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventRepository_UpdateStatus_ConflictOnZeroRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	ev := domain.Event{ID: "ev-1", Status: domain.EventApproved, UpdatedAt: repoNow}

	mock.ExpectExec(`UPDATE events\.events`).
		WithArgs(ev.Status, ev.UpdatedAt, ev.ID, domain.EventPendingBoard).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateStatus(context.Background(), ev, domain.EventPendingBoard); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestEventRepository_List_AppliesFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "creator_id", "host_unit_id", "status", "starts_at", "ends_at", "created_at", "updated_at"}).
		AddRow("ev-2", "Hackathon", "org-1", "unit-1", domain.EventApproved, repoNow, repoNow.Add(8*time.Hour), repoNow, repoNow)

	mock.ExpectQuery(`SELECT .+ FROM events\.events WHERE status = \$1 AND host_unit_id = \$2 ORDER BY created_at DESC`).
		WithArgs(domain.EventApproved, "unit-1").
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), port.EventFilter{Status: domain.EventApproved, HostUnitID: "unit-1"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "ev-2" {
		t.Fatalf("events = %+v", events)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
