package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pr-poehali-dev/pool-schedule/internal/model"
)

// Postgres error codes the booking protocol relies on.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db DBTX
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new active booking with a generated UUID. Duplicate
// detection is not a pre-check: the partial unique index on
// (user_id, session_id) WHERE status = 'active' raises a unique violation,
// which surfaces here as ErrDuplicateBooking. A foreign-key violation
// means the session does not exist.
func (r *BookingRepository) Create(ctx context.Context, userID int64, sessionID string) (*model.Booking, error) {
	booking := &model.Booking{
		ID:        uuid.New().String(),
		UserID:    userID,
		SessionID: sessionID,
		Status:    model.BookingStatusActive,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (id, user_id, session_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		booking.ID, booking.UserID, booking.SessionID, booking.Status, booking.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return nil, ErrDuplicateBooking
			case pgForeignKeyViolation:
				return nil, ErrSessionNotFound
			}
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return booking, nil
}

// GetForUpdate returns a booking or ErrBookingNotFound, locking the row
// for the duration of the enclosing transaction so concurrent cancels of
// the same booking serialise.
func (r *BookingRepository) GetForUpdate(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, session_id, status, created_at
		 FROM bookings WHERE id = $1
		 FOR UPDATE`,
		id,
	).Scan(&b.ID, &b.UserID, &b.SessionID, &b.Status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// MarkCancelled transitions a booking to cancelled status. Rows are never
// deleted; cancelled bookings remain as an audit trail.
func (r *BookingRepository) MarkCancelled(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1`,
		id, model.BookingStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("mark booking cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}
