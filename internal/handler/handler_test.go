package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pr-poehali-dev/pool-schedule/internal/model"
	"github.com/pr-poehali-dev/pool-schedule/internal/repository"
)

type fakeService struct {
	listFn   func(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error)
	bookFn   func(ctx context.Context, userID int64, sessionID string) (string, error)
	cancelFn func(ctx context.Context, bookingID string) error
}

func (f *fakeService) ListSessions(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, date)
}

func (f *fakeService) Book(ctx context.Context, userID int64, sessionID string) (string, error) {
	if f.bookFn == nil {
		return "", errors.New("unexpected Book call")
	}
	return f.bookFn(ctx, userID, sessionID)
}

func (f *fakeService) Cancel(ctx context.Context, bookingID string) error {
	if f.cancelFn == nil {
		return errors.New("unexpected Cancel call")
	}
	return f.cancelFn(ctx, bookingID)
}

func newTestRouter(svc ScheduleService) http.Handler {
	// Rate limit generous enough to never trip in tests.
	return NewRouter(NewHandler(svc), zap.NewNop(), rate.Limit(1000), 1000)
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListSessions(t *testing.T) {
	instructor := "Petrova A."
	specialization := "aqua aerobics"
	svc := &fakeService{
		listFn: func(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error) {
			return []model.SessionWithInstructor{
				{
					Session: model.Session{
						ID:             "5f1c0f2e-1111-4a2a-9d3e-000000000001",
						Date:           date,
						Time:           "08:00",
						MaxCapacity:    10,
						AvailableSpots: 8,
					},
					InstructorName: &instructor,
					Specialization: &specialization,
				},
				{
					Session: model.Session{
						ID:             "5f1c0f2e-1111-4a2a-9d3e-000000000002",
						Date:           date,
						Time:           "09:00",
						MaxCapacity:    10,
						AvailableSpots: 0,
					},
				},
			}, nil
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/sessions?date=2026-08-30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var envelope model.SessionsEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Sessions, 2)
	assert.Equal(t, "2026-08-30", envelope.Sessions[0].Date)
	assert.Equal(t, "08:00", envelope.Sessions[0].Time)
	assert.Equal(t, 8, envelope.Sessions[0].AvailableSpots)
	assert.Equal(t, &instructor, envelope.Sessions[0].Instructor)
	assert.Nil(t, envelope.Sessions[1].Instructor)
}

func TestListSessionsEmptyDay(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := doRequest(t, router, http.MethodGet, "/sessions?date=2026-08-30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	// Empty array, not null.
	assert.JSONEq(t, `{"sessions":[]}`, rec.Body.String())
}

func TestListSessionsDefaultsToToday(t *testing.T) {
	var got time.Time
	svc := &fakeService{
		listFn: func(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error) {
			got = date
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Now().Format("2006-01-02"), got.Format("2006-01-02"))
}

func TestListSessionsRejectsBadDate(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := doRequest(t, router, http.MethodGet, "/sessions?date=30-08-2026", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSessionsStoreFailure(t *testing.T) {
	svc := &fakeService{
		listFn: func(ctx context.Context, date time.Time) ([]model.SessionWithInstructor, error) {
			return nil, errors.New("connection refused")
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateBooking(t *testing.T) {
	svc := &fakeService{
		bookFn: func(ctx context.Context, userID int64, sessionID string) (string, error) {
			assert.Equal(t, int64(7), userID)
			assert.Equal(t, "5f1c0f2e-1111-4a2a-9d3e-000000000001", sessionID)
			return "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed", nil
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/bookings",
		`{"userId":7,"sessionId":"5f1c0f2e-1111-4a2a-9d3e-000000000001"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"bookingId":"1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"}`, rec.Body.String())
}

func TestCreateBookingValidation(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing sessionId", `{"userId":7}`, "sessionId is required"},
		{"missing userId", `{"sessionId":"5f1c0f2e-1111-4a2a-9d3e-000000000001"}`, "userId is required"},
		{"malformed body", `{"userId":`, "invalid request body"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeService{})

			rec := doRequest(t, router, http.MethodPost, "/bookings", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tc.wantMsg)
		})
	}
}

func TestCreateBookingErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"session not found", repository.ErrSessionNotFound, http.StatusNotFound, "session not found"},
		{"no capacity", repository.ErrNoCapacity, http.StatusBadRequest, "no available spots"},
		{"duplicate", repository.ErrDuplicateBooking, http.StatusBadRequest, "booking already exists"},
		{"store failure", errors.New("deadlock detected"), http.StatusServiceUnavailable, "failed to create booking"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{
				bookFn: func(ctx context.Context, userID int64, sessionID string) (string, error) {
					return "", tc.err
				},
			}
			router := newTestRouter(svc)

			rec := doRequest(t, router, http.MethodPost, "/bookings",
				`{"userId":7,"sessionId":"5f1c0f2e-1111-4a2a-9d3e-000000000001"}`)
			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantMsg, resp.Error)
		})
	}
}

func TestCancelBooking(t *testing.T) {
	svc := &fakeService{
		cancelFn: func(ctx context.Context, bookingID string) error {
			assert.Equal(t, "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed", bookingID)
			return nil
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/bookings",
		`{"bookingId":"1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestCancelBookingValidation(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := doRequest(t, router, http.MethodDelete, "/bookings", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookingId is required")
}

func TestCancelBookingNotFound(t *testing.T) {
	svc := &fakeService{
		cancelFn: func(ctx context.Context, bookingID string) error {
			return repository.ErrBookingNotFound
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/bookings", `{"bookingId":"9999"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking not found")
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := doRequest(t, router, http.MethodPut, "/bookings", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := doRequest(t, router, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPreflight(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := doRequest(t, router, http.MethodOptions, "/bookings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User-Id")
}

func TestRateLimit(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{}), zap.NewNop(), rate.Limit(1), 1)

	first := doRequest(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
