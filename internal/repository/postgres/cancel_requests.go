package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

// EventCancelRequestRepository implements cancel-request persistence.
type EventCancelRequestRepository struct {
	exec    pgExecutor
	begin   txBeginner
	builder squirrel.StatementBuilderType
}

// NewEventCancelRequestRepository constructs the repository.
func NewEventCancelRequestRepository(exec pgExecutor) *EventCancelRequestRepository {
	repo := &EventCancelRequestRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if beginner, ok := exec.(txBeginner); ok {
		repo.begin = beginner
	}
	return repo
}

func (r *EventCancelRequestRepository) beginTx(ctx context.Context) (pgx.Tx, error) {
	if r.begin == nil {
		return nil, errors.New("executor does not support transactions")
	}
	return r.begin.Begin(ctx)
}

const cancelRequestColumns = "id, event_id, requester_id, reason, status, created_at, resolved_at"

func execCancelRequestInsert(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, req domain.EventCancelRequest) error {
	stmt, args, err := builder.Insert("events.event_cancel_requests").
		Columns("id", "event_id", "requester_id", "reason", "status", "created_at").
		Values(req.ID, req.EventID, req.RequesterID, req.Reason, req.Status, req.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert cancel request sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert cancel request: %w", err)
	}
	return nil
}

func execCancelRequestUpdate(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, req domain.EventCancelRequest, expected domain.EventCancelRequestStatus) error {
	stmt, args, err := builder.Update("events.event_cancel_requests").
		Set("status", req.Status).
		Set("resolved_at", req.ResolvedAt).
		Where(squirrel.Eq{"id": req.ID, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update cancel request sql: %w", err)
	}

	tag, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update cancel request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

func scanCancelRequest(row pgx.Row) (*domain.EventCancelRequest, error) {
	var req domain.EventCancelRequest
	if err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Reason, &req.Status, &req.CreatedAt, &req.ResolvedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan cancel request: %w", err)
	}
	return &req, nil
}

// GetByID retrieves a cancellation request by id.
func (r *EventCancelRequestRepository) GetByID(ctx context.Context, id string) (*domain.EventCancelRequest, error) {
	stmt, args, err := r.builder.Select(cancelRequestColumns).
		From("events.event_cancel_requests").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select cancel request sql: %w", err)
	}

	return scanCancelRequest(r.exec.QueryRow(ctx, stmt, args...))
}

// GetPendingByEvent retrieves the pending request of an event, if any.
func (r *EventCancelRequestRepository) GetPendingByEvent(ctx context.Context, eventID string) (*domain.EventCancelRequest, error) {
	stmt, args, err := r.builder.Select(cancelRequestColumns).
		From("events.event_cancel_requests").
		Where(squirrel.Eq{"event_id": eventID, "status": domain.CancelRequestPending}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select pending cancel request sql: %w", err)
	}

	return scanCancelRequest(r.exec.QueryRow(ctx, stmt, args...))
}

// OpenWithEvent inserts the request and moves the event to
// CANCEL_REQUESTED in one transaction.
func (r *EventCancelRequestRepository) OpenWithEvent(ctx context.Context, req domain.EventCancelRequest, ev domain.Event, expected domain.EventStatus) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := execEventStatusUpdate(ctx, tx, r.builder, ev, expected); err != nil {
		return err
	}
	if err := execCancelRequestInsert(ctx, tx, r.builder, req); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cancel request: %w", err)
	}
	return nil
}

// ResolveWithEvent persists the request resolution together with the
// event transition. The guards on both rows make concurrent resolutions
// lose cleanly with ErrConflict and roll back as a unit.
func (r *EventCancelRequestRepository) ResolveWithEvent(ctx context.Context, req domain.EventCancelRequest, expectedReq domain.EventCancelRequestStatus, ev domain.Event, expectedEv domain.EventStatus) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := execEventStatusUpdate(ctx, tx, r.builder, ev, expectedEv); err != nil {
		return err
	}
	if err := execCancelRequestUpdate(ctx, tx, r.builder, req, expectedReq); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cancel resolution: %w", err)
	}
	return nil
}
