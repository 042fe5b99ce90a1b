// Package repository implements all database queries for the pool booking
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pr-poehali-dev/pool-schedule/internal/model"
)

// DBTX is the subset of pgx operations the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository runs
// standalone or inside a TxManager unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore is the slot catalog: availability queries plus the single
// capacity mutator.
type SessionStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error)
	GetByID(ctx context.Context, id string) (*model.Session, error)
	AdjustAvailability(ctx context.Context, id string, delta int) (int, error)
}

// BookingStore is the reservation ledger.
type BookingStore interface {
	Create(ctx context.Context, userID int64, sessionID string) (*model.Booking, error)
	GetForUpdate(ctx context.Context, id string) (*model.Booking, error)
	MarkCancelled(ctx context.Context, id string) error
}
