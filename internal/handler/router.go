package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter assembles the HTTP surface: middleware stack, API routes, and
// JSON fallbacks for unknown routes and methods.
func NewRouter(h *Handler, logger *zap.Logger, rps rate.Limit, burst int) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(AccessLog(logger))       // structured access log
	r.Use(CORS)                    // permissive CORS, answers preflight
	r.Use(RateLimit(rps, burst))   // per-IP rate limiting

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/health", HealthCheck)

	r.Get("/sessions", h.ListSessions)
	r.Post("/bookings", h.CreateBooking)
	r.Delete("/bookings", h.CancelBooking)

	return r
}
