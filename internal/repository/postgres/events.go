package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

// EventRepository implements event persistence.
type EventRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewEventRepository constructs a PostgreSQL-backed event repository.
func NewEventRepository(exec pgExecutor) *EventRepository {
	return &EventRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const eventColumns = "id, name, creator_id, host_unit_id, status, starts_at, ends_at, created_at, updated_at"

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, ev domain.Event) error {
	stmt, args, err := r.builder.Insert("events.events").
		Columns("id", "name", "creator_id", "host_unit_id", "status", "starts_at", "ends_at", "created_at", "updated_at").
		Values(ev.ID, ev.Name, ev.CreatorID, ev.HostUnitID, ev.Status, ev.StartsAt, ev.EndsAt, ev.CreatedAt, ev.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert event sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var ev domain.Event
	if err := row.Scan(&ev.ID, &ev.Name, &ev.CreatorID, &ev.HostUnitID, &ev.Status, &ev.StartsAt, &ev.EndsAt, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &ev, nil
}

// GetByID retrieves an event by id.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	stmt, args, err := r.builder.Select(eventColumns).
		From("events.events").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select event sql: %w", err)
	}

	return scanEvent(r.exec.QueryRow(ctx, stmt, args...))
}

// List retrieves events matching the filter, newest first.
func (r *EventRepository) List(ctx context.Context, filter port.EventFilter) ([]domain.Event, error) {
	q := r.builder.Select(eventColumns).
		From("events.events").
		OrderBy("created_at DESC")

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.HostUnitID != "" {
		q = q.Where(squirrel.Eq{"host_unit_id": filter.HostUnitID})
	}
	if filter.CreatorID != "" {
		q = q.Where(squirrel.Eq{"creator_id": filter.CreatorID})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var ev domain.Event
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.CreatorID, &ev.HostUnitID, &ev.Status, &ev.StartsAt, &ev.EndsAt, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// UpdateStatus persists a transition guarded by the expected pre-transition
// status. Zero rows affected means the stored state moved under the caller.
func (r *EventRepository) UpdateStatus(ctx context.Context, ev domain.Event, expected domain.EventStatus) error {
	return execEventStatusUpdate(ctx, r.exec, r.builder, ev, expected)
}

// execEventStatusUpdate runs the guarded event transition against any
// executor so cancel-request transactions can reuse it.
func execEventStatusUpdate(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, ev domain.Event, expected domain.EventStatus) error {
	stmt, args, err := builder.Update("events.events").
		Set("status", ev.Status).
		Set("updated_at", ev.UpdatedAt).
		Where(squirrel.Eq{"id": ev.ID, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update event sql: %w", err)
	}

	tag, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}
