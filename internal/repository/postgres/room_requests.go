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

// RoomRequestRepository implements header+item persistence. Item
// transitions and the derived header status are written in one
// transaction so aggregate views never observe a half-applied roll-up.
type RoomRequestRepository struct {
	exec    pgExecutor
	begin   txBeginner
	builder squirrel.StatementBuilderType
}

// NewRoomRequestRepository constructs the repository. The executor must
// also be able to open transactions; pools and the pgxmock pool both can.
func NewRoomRequestRepository(exec pgExecutor) *RoomRequestRepository {
	repo := &RoomRequestRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if b, ok := exec.(txBeginner); ok {
		repo.begin = b
	}
	return repo
}

func (r *RoomRequestRepository) beginTx(ctx context.Context) (pgx.Tx, error) {
	if r.begin == nil {
		return nil, errors.New("executor does not support transactions")
	}
	return r.begin.Begin(ctx)
}

const (
	headerColumns = "id, event_id, requester_id, status, created_at, updated_at"
	itemColumns   = "id, header_id, room_type_id, capacity, room_count, starts_at, ends_at, status, assigned_room_id, note"
)

// CreateHeader inserts the header together with all its line items.
func (r *RoomRequestRepository) CreateHeader(ctx context.Context, header domain.RoomRequestHeader) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt, args, err := r.builder.Insert("events.room_requests").
		Columns("id", "event_id", "requester_id", "status", "created_at", "updated_at").
		Values(header.ID, header.EventID, header.RequesterID, header.Status, header.CreatedAt, header.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert header sql: %w", err)
	}
	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert header: %w", err)
	}

	for _, item := range header.Items {
		stmt, args, err := r.builder.Insert("events.room_request_items").
			Columns("id", "header_id", "room_type_id", "capacity", "room_count", "starts_at", "ends_at", "status", "assigned_room_id", "note").
			Values(item.ID, item.HeaderID, item.RoomTypeID, item.Capacity, item.RoomCount, item.StartsAt, item.EndsAt, item.Status, item.AssignedRoomID, item.Note).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert item sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *RoomRequestRepository) loadItems(ctx context.Context, headerID string) ([]domain.RoomRequestItem, error) {
	stmt, args, err := r.builder.Select(itemColumns).
		From("events.room_request_items").
		Where(squirrel.Eq{"header_id": headerID}).
		OrderBy("starts_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select items sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.RoomRequestItem
	for rows.Next() {
		var it domain.RoomRequestItem
		if err := rows.Scan(&it.ID, &it.HeaderID, &it.RoomTypeID, &it.Capacity, &it.RoomCount, &it.StartsAt, &it.EndsAt, &it.Status, &it.AssignedRoomID, &it.Note); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *RoomRequestRepository) getHeaderWhere(ctx context.Context, pred any, args ...any) (*domain.RoomRequestHeader, error) {
	stmt, sqlArgs, err := r.builder.Select(headerColumns).
		From("events.room_requests").
		Where(pred, args...).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select header sql: %w", err)
	}

	var h domain.RoomRequestHeader
	row := r.exec.QueryRow(ctx, stmt, sqlArgs...)
	if err := row.Scan(&h.ID, &h.EventID, &h.RequesterID, &h.Status, &h.CreatedAt, &h.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan header: %w", err)
	}

	items, err := r.loadItems(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	h.Items = items
	return &h, nil
}

// GetHeader retrieves a header with all its items.
func (r *RoomRequestRepository) GetHeader(ctx context.Context, id string) (*domain.RoomRequestHeader, error) {
	return r.getHeaderWhere(ctx, squirrel.Eq{"id": id})
}

// GetHeaderByItem retrieves the header owning the given line item.
func (r *RoomRequestRepository) GetHeaderByItem(ctx context.Context, itemID string) (*domain.RoomRequestHeader, error) {
	stmt, args, err := r.builder.Select("header_id").
		From("events.room_request_items").
		Where(squirrel.Eq{"id": itemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select item header sql: %w", err)
	}

	var headerID string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&headerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan item header id: %w", err)
	}

	return r.GetHeader(ctx, headerID)
}

// ListByEvent retrieves all headers of one event.
func (r *RoomRequestRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.RoomRequestHeader, error) {
	stmt, args, err := r.builder.Select(headerColumns).
		From("events.room_requests").
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list headers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query headers: %w", err)
	}
	defer rows.Close()

	var headers []domain.RoomRequestHeader
	for rows.Next() {
		var h domain.RoomRequestHeader
		if err := rows.Scan(&h.ID, &h.EventID, &h.RequesterID, &h.Status, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan header: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate headers: %w", err)
	}

	for i := range headers {
		items, err := r.loadItems(ctx, headers[i].ID)
		if err != nil {
			return nil, err
		}
		headers[i].Items = items
	}
	return headers, nil
}

// UpdateItem persists one item transition and the re-derived header status
// in a single transaction, guarded by the item's expected pre-transition
// status.
func (r *RoomRequestRepository) UpdateItem(ctx context.Context, header domain.RoomRequestHeader, item domain.RoomRequestItem, expected domain.RoomRequestItemStatus) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt, args, err := r.builder.Update("events.room_request_items").
		Set("room_type_id", item.RoomTypeID).
		Set("capacity", item.Capacity).
		Set("room_count", item.RoomCount).
		Set("starts_at", item.StartsAt).
		Set("ends_at", item.EndsAt).
		Set("status", item.Status).
		Set("assigned_room_id", item.AssignedRoomID).
		Set("note", item.Note).
		Where(squirrel.Eq{"id": item.ID, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item sql: %w", err)
	}

	tag, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}

	stmt, args, err = r.builder.Update("events.room_requests").
		Set("status", header.Status).
		Set("updated_at", header.UpdatedAt).
		Where(squirrel.Eq{"id": header.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update header sql: %w", err)
	}
	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("update header: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UpdateAllItems persists a whole-header transition (creator cancel),
// guarded by the expected header status.
func (r *RoomRequestRepository) UpdateAllItems(ctx context.Context, header domain.RoomRequestHeader, expected domain.RoomRequestStatus) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt, args, err := r.builder.Update("events.room_requests").
		Set("status", header.Status).
		Set("updated_at", header.UpdatedAt).
		Where(squirrel.Eq{"id": header.ID, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update header sql: %w", err)
	}

	tag, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}

	for _, item := range header.Items {
		stmt, args, err := r.builder.Update("events.room_request_items").
			Set("status", item.Status).
			Where(squirrel.Eq{"id": item.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update item sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

