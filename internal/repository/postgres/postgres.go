package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgExecutor abstracts over a pool, connection, or transaction.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is the subset of the pool API used to open transactions.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Events         *EventRepository
	CancelRequests *EventCancelRequestRepository
	RoomRequests   *RoomRequestRepository
	RoomChanges    *RoomChangeRepository
	Invitations    *InvitationRepository
	Ratings        *RatingRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Events:         NewEventRepository(pool),
		CancelRequests: NewEventCancelRequestRepository(pool),
		RoomRequests:   NewRoomRequestRepository(pool),
		RoomChanges:    NewRoomChangeRepository(pool),
		Invitations:    NewInvitationRepository(pool),
		Ratings:        NewRatingRepository(pool),
	}
}
