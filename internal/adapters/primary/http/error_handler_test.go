package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/lorrc/workload-dashboard/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestErrorHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestErrorHandler_Describe(t *testing.T) {
	h := newTestErrorHandler()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"tracker error", fmt.Errorf("search issues: %w", &apperrors.TrackerError{StatusCode: 401, Body: "nope"}), 502, "TRACKER_ERROR"},
		{"wrapped transport failure", fmt.Errorf("POST /x: %w: %w", apperrors.ErrTrackerRequest, errors.New("dial tcp")), 502, "TRACKER_ERROR"},
		{"too many pages", apperrors.ErrTooManyPages, 502, "TOO_MANY_RESULTS"},
		{"unknown group", apperrors.NewNotFoundError(apperrors.ErrUnknownGroup, "Group \"x\" is not available"), 404, "NOT_FOUND"},
		{"group not found", apperrors.ErrGroupNotFound, 404, "GROUP_NOT_FOUND"},
		{"deadline", fmt.Errorf("search: %w", context.DeadlineExceeded), 504, "TRACKER_TIMEOUT"},
		{"validation", apperrors.NewValidationErrors(), 422, "VALIDATION_ERROR"},
		{"rate limited", apperrors.NewRateLimitError(), 429, "RATE_LIMITED"},
		{"unexpected", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := h.Describe(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestErrorHandler_Handle_TrackerDetails(t *testing.T) {
	h := newTestErrorHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodGet, "/api/v1/workload", nil)

	h.Handle(rec, req, &apperrors.TrackerError{Method: "POST", Endpoint: "/rest/api/3/search/jql", StatusCode: 400, Body: "bad jql"})

	require.Equal(t, stdhttp.StatusBadGateway, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "TRACKER_ERROR", resp.Code)
	assert.EqualValues(t, 400, resp.Details["trackerStatus"])
	assert.Equal(t, "bad jql", resp.Details["body"])
}

func TestErrorHandler_Handle_Validation(t *testing.T) {
	h := newTestErrorHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodGet, "/api/v1/workload", nil)

	errs := apperrors.NewValidationErrors()
	errs.Add("groupBy", "invalid grouping mode")
	h.Handle(rec, req, errs)

	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	var resp ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"invalid grouping mode"}, resp.Fields["groupBy"])
}

func TestErrorHandler_Handle_RateLimited(t *testing.T) {
	h := newTestErrorHandler()
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         1,
		OnLimited:         h.Handle,
	})
	defer rl.Stop()

	handler := rl.Middleware(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(stdhttp.MethodGet, "/api/v1/workload", nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/api/v1/workload", nil))

	require.Equal(t, stdhttp.StatusTooManyRequests, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "RATE_LIMITED", resp.Code)
	assert.Equal(t, "Too many requests. Please try again later.", resp.Error)
}
