package repository

import "errors"

// Domain sentinel errors. Handlers translate these into HTTP statuses;
// anything else coming out of the repositories is a store failure.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrNoCapacity       = errors.New("no available spots")
	ErrDuplicateBooking = errors.New("booking already exists")

	// ErrCapacityViolation reports a capacity adjustment that would leave
	// available_spots outside [0, max_capacity]. Unreachable while the
	// booking invariant holds; surfaced loudly rather than capped.
	ErrCapacityViolation = errors.New("capacity adjustment out of bounds")
)
