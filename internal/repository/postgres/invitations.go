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

// InvitationRepository implements invitation persistence.
type InvitationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewInvitationRepository constructs the repository.
func NewInvitationRepository(exec pgExecutor) *InvitationRepository {
	return &InvitationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const invitationColumns = "id, event_id, inviter_id, invitee_id, accepted, decline_reason, responded_at, revoked_at, created_at"

// Create inserts a new invitation.
func (r *InvitationRepository) Create(ctx context.Context, inv domain.Invitation) error {
	stmt, args, err := r.builder.Insert("events.invitations").
		Columns("id", "event_id", "inviter_id", "invitee_id", "created_at").
		Values(inv.ID, inv.EventID, inv.InviterID, inv.InviteeID, inv.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert invitation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := row.Scan(&inv.ID, &inv.EventID, &inv.InviterID, &inv.InviteeID, &inv.Accepted, &inv.DeclineReason, &inv.RespondedAt, &inv.RevokedAt, &inv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan invitation: %w", err)
	}
	return &inv, nil
}

// GetByID retrieves an invitation by id.
func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	stmt, args, err := r.builder.Select(invitationColumns).
		From("events.invitations").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select invitation sql: %w", err)
	}

	return scanInvitation(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEventAndInvitee retrieves the invitee's invitation for an event.
func (r *InvitationRepository) GetByEventAndInvitee(ctx context.Context, eventID, inviteeID string) (*domain.Invitation, error) {
	stmt, args, err := r.builder.Select(invitationColumns).
		From("events.invitations").
		Where(squirrel.Eq{"event_id": eventID, "invitee_id": inviteeID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select invitation sql: %w", err)
	}

	return scanInvitation(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByEvent retrieves all invitations of one event.
func (r *InvitationRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Invitation, error) {
	stmt, args, err := r.builder.Select(invitationColumns).
		From("events.invitations").
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invitations sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query invitations: %w", err)
	}
	defer rows.Close()

	var invs []domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.InviterID, &inv.InviteeID, &inv.Accepted, &inv.DeclineReason, &inv.RespondedAt, &inv.RevokedAt, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return invs, nil
}

// Update persists a response or revocation. The guard on the pending
// columns rejects double responses racing each other.
func (r *InvitationRepository) Update(ctx context.Context, inv domain.Invitation) error {
	stmt, args, err := r.builder.Update("events.invitations").
		Set("accepted", inv.Accepted).
		Set("decline_reason", inv.DeclineReason).
		Set("responded_at", inv.RespondedAt).
		Set("revoked_at", inv.RevokedAt).
		Where(squirrel.Eq{"id": inv.ID, "accepted": nil, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update invitation sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}
