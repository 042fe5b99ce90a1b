// Package model defines the core domain types for the pool booking system.
package model

import "time"

// Booking status values. A cancelled booking is terminal; re-booking the
// same session creates a new record with a new identifier.
const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
)

// Session represents a scheduled pool session with a fixed total capacity
// and a live remaining-capacity counter.
type Session struct {
	ID             string
	Date           time.Time
	Time           string
	MaxCapacity    int
	AvailableSpots int
	InstructorID   *string
}

// IsFull returns true when no spots remain.
func (s *Session) IsFull() bool {
	return s.AvailableSpots <= 0
}

// Booked returns the number of spots currently taken.
func (s *Session) Booked() int {
	return s.MaxCapacity - s.AvailableSpots
}

// SessionWithInstructor is a Session joined with its optional instructor.
type SessionWithInstructor struct {
	Session
	InstructorName *string
	Specialization *string
}

// Booking binds one user to one session.
type Booking struct {
	ID        string
	UserID    int64
	SessionID string
	Status    string
	CreatedAt time.Time
}

// IsCancelled returns true once the booking has been cancelled.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// SessionResponse mirrors the wire format consumed by the schedule frontend.
type SessionResponse struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	MaxCapacity    int     `json:"maxCapacity"`
	AvailableSpots int     `json:"availableSpots"`
	Instructor     *string `json:"instructor"`
	Specialization *string `json:"specialization"`
}

// SessionsEnvelope wraps the session list response.
type SessionsEnvelope struct {
	Sessions []SessionResponse `json:"sessions"`
}

// CreateBookingRequest is the payload for booking a spot.
type CreateBookingRequest struct {
	UserID    int64  `json:"userId"`
	SessionID string `json:"sessionId"`
}

// CancelBookingRequest is the payload for cancelling a booking.
type CancelBookingRequest struct {
	BookingID string `json:"bookingId"`
}

// BookingCreatedResponse is returned on a successful booking.
type BookingCreatedResponse struct {
	Success   bool   `json:"success"`
	BookingID string `json:"bookingId"`
}

// SuccessResponse is returned on a successful cancellation.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
