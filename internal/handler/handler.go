// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pr-poehali-dev/pool-schedule/internal/model"
	"github.com/pr-poehali-dev/pool-schedule/internal/repository"
)

const dateLayout = "2006-01-02"

// ScheduleService is the service surface the handlers need.
type ScheduleService interface {
	ListSessions(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error)
	Book(ctx context.Context, userID int64, sessionID string) (string, error)
	Cancel(ctx context.Context, bookingID string) error
}

// Handler holds all HTTP handlers for the pool schedule API.
type Handler struct {
	svc ScheduleService
}

// NewHandler constructs a Handler.
func NewHandler(svc ScheduleService) *Handler {
	return &Handler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListSessions handles GET /sessions?date=YYYY-MM-DD
// Returns all sessions for the date, ordered by start time. A missing
// date defaults to the current calendar date.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if param := r.URL.Query().Get("date"); param != "" {
		parsed, err := time.Parse(dateLayout, param)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	sessions, err := h.svc.ListSessions(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to list sessions")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	out := make([]model.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, model.SessionResponse{
			ID:             s.ID,
			Date:           s.Date.Format(dateLayout),
			Time:           s.Time,
			MaxCapacity:    s.MaxCapacity,
			AvailableSpots: s.AvailableSpots,
			Instructor:     s.InstructorName,
			Specialization: s.Specialization,
		})
	}

	writeJSON(w, http.StatusOK, model.SessionsEnvelope{Sessions: out})
}

// CreateBooking handles POST /bookings
// Reserves one spot on a session for a user.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	bookingID, err := h.svc.Book(r.Context(), req.UserID, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, repository.ErrNoCapacity):
			writeError(w, http.StatusBadRequest, "no available spots")
		case errors.Is(err, repository.ErrDuplicateBooking):
			writeError(w, http.StatusBadRequest, "booking already exists")
		default:
			writeError(w, http.StatusServiceUnavailable, "failed to create booking")
		}
		return
	}

	writeJSON(w, http.StatusOK, model.BookingCreatedResponse{Success: true, BookingID: bookingID})
}

// CancelBooking handles DELETE /bookings
// Marks a booking cancelled and returns its spot to the session.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CancelBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "bookingId is required")
		return
	}

	if err := h.svc.Cancel(r.Context(), req.BookingID); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "failed to cancel booking")
		return
	}

	writeJSON(w, http.StatusOK, model.SuccessResponse{Success: true})
}

// ─── Router fallbacks and health ──────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers unknown routes with a JSON body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed answers unsupported methods with a JSON body.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
