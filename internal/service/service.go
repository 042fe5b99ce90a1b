// Package service implements the booking business rules: availability
// queries, the capacity-accounting protocol for booking and cancellation,
// and its transaction orchestration.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pr-poehali-dev/pool-schedule/internal/model"
	"github.com/pr-poehali-dev/pool-schedule/internal/repository"
)

// ScheduleService orchestrates session and booking operations.
type ScheduleService struct {
	sessions repository.SessionStore
	tx       repository.TxManager
	logger   *zap.Logger
}

// NewScheduleService constructs a ScheduleService. The sessions store is
// pool-backed and used for reads outside any transaction; all writes go
// through the TxManager.
func NewScheduleService(sessions repository.SessionStore, tx repository.TxManager, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{sessions: sessions, tx: tx, logger: logger}
}

// ListSessions returns all sessions for the given date ordered by start time.
func (s *ScheduleService) ListSessions(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error) {
	return s.sessions.ListByDate(ctx, date)
}

// Book reserves one spot on a session for a user and returns the new
// booking identifier.
//
// A non-authoritative peek rejects obviously doomed requests before a
// transaction is opened. The outcome is decided inside the transaction:
// the partial unique index turns a double-book into ErrDuplicateBooking,
// and the bounded conditional decrement turns a lost capacity race into
// ErrNoCapacity. Booking row and counter change commit or roll back
// together.
func (s *ScheduleService) Book(ctx context.Context, userID int64, sessionID string) (string, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", repository.ErrSessionNotFound
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.IsFull() {
		return "", repository.ErrNoCapacity
	}

	var bookingID string
	err = s.tx.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		booking, err := repos.Bookings.Create(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if _, err := repos.Sessions.AdjustAvailability(ctx, sessionID, -1); err != nil {
			return err
		}
		bookingID = booking.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bookingID),
		zap.Int64("user_id", userID),
		zap.String("session_id", sessionID),
	)
	return bookingID, nil
}

// Cancel marks a booking cancelled and returns its spot to the session.
// Cancelling an already-cancelled booking is a no-op that still succeeds;
// the capacity is incremented exactly once. The booking row is locked for
// the duration of the transaction so two racing cancels serialise.
func (s *ScheduleService) Cancel(ctx context.Context, bookingID string) error {
	if _, err := uuid.Parse(bookingID); err != nil {
		return repository.ErrBookingNotFound
	}

	var (
		alreadyCancelled bool
		sessionID        string
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		booking, err := repos.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.IsCancelled() {
			alreadyCancelled = true
			return nil
		}
		sessionID = booking.SessionID

		if err := repos.Bookings.MarkCancelled(ctx, bookingID); err != nil {
			return err
		}
		_, err = repos.Sessions.AdjustAvailability(ctx, sessionID, +1)
		return err
	})
	if err != nil {
		return err
	}

	if alreadyCancelled {
		s.logger.Info("booking already cancelled", zap.String("booking_id", bookingID))
		return nil
	}
	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("session_id", sessionID),
	)
	return nil
}
