package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pr-poehali-dev/pool-schedule/internal/model"
)

// SessionRepository handles persistence for pool sessions.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// ListByDate returns all sessions for a calendar date ordered by start time,
// each joined with its optional instructor. Reads the latest committed
// counters; there is deliberately no caching layer in front of this query.
func (r *SessionRepository) ListByDate(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.session_date, to_char(s.session_time, 'HH24:MI'),
		        s.max_capacity, s.available_spots, i.name, i.specialization
		 FROM sessions s
		 LEFT JOIN instructors i ON i.id = s.instructor_id
		 WHERE s.session_date = $1
		 ORDER BY s.session_time ASC`,
		date.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.SessionWithInstructor
	for rows.Next() {
		var s model.SessionWithInstructor
		if err := rows.Scan(
			&s.ID, &s.Date, &s.Time,
			&s.MaxCapacity, &s.AvailableSpots,
			&s.InstructorName, &s.Specialization,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetByID returns a single session or ErrSessionNotFound.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.QueryRow(ctx,
		`SELECT id, session_date, to_char(session_time, 'HH24:MI'),
		        max_capacity, available_spots, instructor_id
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Date, &s.Time, &s.MaxCapacity, &s.AvailableSpots, &s.InstructorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// AdjustAvailability applies delta (±1) to available_spots in a single
// conditional UPDATE bounded to [0, max_capacity], and returns the new
// count. Zero rows affected means the bound check failed: ErrNoCapacity
// for a decrement, ErrCapacityViolation for an increment. Callers must
// ensure the session exists (Book proves it via the bookings FK) and run
// this on the same transaction handle as the booking-state change.
func (r *SessionRepository) AdjustAvailability(ctx context.Context, id string, delta int) (int, error) {
	var remaining int
	err := r.db.QueryRow(ctx,
		`UPDATE sessions
		 SET available_spots = available_spots + $2
		 WHERE id = $1
		   AND available_spots + $2 >= 0
		   AND available_spots + $2 <= max_capacity
		 RETURNING available_spots`,
		id, delta,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if delta < 0 {
				return 0, ErrNoCapacity
			}
			return 0, ErrCapacityViolation
		}
		return 0, fmt.Errorf("adjust availability: %w", err)
	}
	return remaining, nil
}
