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

// RoomChangeRepository implements room-change request persistence.
type RoomChangeRepository struct {
	exec    pgExecutor
	begin   txBeginner
	builder squirrel.StatementBuilderType
}

// NewRoomChangeRepository constructs the repository.
func NewRoomChangeRepository(exec pgExecutor) *RoomChangeRepository {
	repo := &RoomChangeRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if beginner, ok := exec.(txBeginner); ok {
		repo.begin = beginner
	}
	return repo
}

func (r *RoomChangeRepository) beginTx(ctx context.Context) (pgx.Tx, error) {
	if r.begin == nil {
		return nil, errors.New("executor does not support transactions")
	}
	return r.begin.Begin(ctx)
}

const roomChangeColumns = "id, line_item_id, requester_id, current_room_id, reason, room_type_id, capacity, new_room_id, status, created_at"

// Create inserts a new room-change request.
func (r *RoomChangeRepository) Create(ctx context.Context, req domain.RoomChangeRequest) error {
	stmt, args, err := r.builder.Insert("events.room_change_requests").
		Columns("id", "line_item_id", "requester_id", "current_room_id", "reason", "room_type_id", "capacity", "status", "created_at").
		Values(req.ID, req.LineItemID, req.RequesterID, req.CurrentRoomID, req.Reason, req.RoomTypeID, req.Capacity, req.Status, req.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert room change sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert room change: %w", err)
	}
	return nil
}

// GetByID retrieves a room-change request by id.
func (r *RoomChangeRepository) GetByID(ctx context.Context, id string) (*domain.RoomChangeRequest, error) {
	stmt, args, err := r.builder.Select(roomChangeColumns).
		From("events.room_change_requests").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select room change sql: %w", err)
	}

	var req domain.RoomChangeRequest
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&req.ID, &req.LineItemID, &req.RequesterID, &req.CurrentRoomID, &req.Reason, &req.RoomTypeID, &req.Capacity, &req.NewRoomID, &req.Status, &req.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan room change: %w", err)
	}
	return &req, nil
}

// UpdateStatus persists a resolution guarded by the expected status.
func (r *RoomChangeRepository) UpdateStatus(ctx context.Context, req domain.RoomChangeRequest, expected domain.RoomChangeStatus) error {
	return execRoomChangeUpdate(ctx, r.exec, r.builder, req, expected)
}

func execRoomChangeUpdate(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, req domain.RoomChangeRequest, expected domain.RoomChangeStatus) error {
	stmt, args, err := builder.Update("events.room_change_requests").
		Set("status", req.Status).
		Set("new_room_id", req.NewRoomID).
		Where(squirrel.Eq{"id": req.ID, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room change sql: %w", err)
	}

	tag, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update room change: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

// execAssignedRoomSwap replaces the room held by an assigned line item.
// The guard on the current room id makes concurrent swaps lose cleanly
// with ErrConflict.
func execAssignedRoomSwap(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, swap domain.RoomSwap) error {
	stmt, args, err := builder.Update("events.room_request_items").
		Set("assigned_room_id", swap.NewRoomID).
		Where(squirrel.Eq{"id": swap.LineItemID, "assigned_room_id": swap.OldRoomID, "status": domain.RoomItemAssigned}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build swap room sql: %w", err)
	}

	tag, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("swap assigned room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

// Approve persists the approval and the room replacement on the
// originating line item as one transaction, so a lost swap leaves the
// request pending.
func (r *RoomChangeRepository) Approve(ctx context.Context, req domain.RoomChangeRequest, expected domain.RoomChangeStatus, swap domain.RoomSwap) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := execRoomChangeUpdate(ctx, tx, r.builder, req, expected); err != nil {
		return err
	}
	if err := execAssignedRoomSwap(ctx, tx, r.builder, swap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit room change approval: %w", err)
	}
	return nil
}
