package http

import (
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/lorrc/workload-dashboard/internal/core/mocks"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
	"github.com/lorrc/workload-dashboard/web"
)

func newDashboardRouter(t *testing.T, workload *mocks.MockWorkloadService, users *mocks.MockUserResolver) chi.Router {
	t.Helper()

	views, err := web.NewViews()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewDashboardHandler(workload, users, views, NewErrorHandler(logger), "Team Workload", logger)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestDashboardHandler_HandleDashboard(t *testing.T) {
	people := []domain.User{
		{AccountID: "acc-1", DisplayName: "Ann Smith"},
		{AccountID: "acc-2", DisplayName: "Bob Jones"},
	}

	t.Run("no selection renders the form only", func(t *testing.T) {
		workload := mocks.NewMockWorkloadService()
		users := mocks.NewMockUserResolver()
		workload.On("Groups").Return([]string{"engineering"})
		users.On("ResolveUsers", mock.Anything, []string{"engineering"}).Return(people, nil)

		rec := httptest.NewRecorder()
		newDashboardRouter(t, workload, users).ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil))

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		assert.Contains(t, body, "<title>Team Workload</title>")
		assert.Contains(t, body, `<option value="acc-1">Ann Smith</option>`)
		assert.Contains(t, body, `<option value="engineering">engineering</option>`)
		assert.Contains(t, body, `<option value="project" selected>Project</option>`)
		assert.NotContains(t, body, "row-total")
		workload.AssertNotCalled(t, "GetWorkload", mock.Anything, mock.Anything)
	})

	t.Run("person selection renders rows and total", func(t *testing.T) {
		workload := mocks.NewMockWorkloadService()
		users := mocks.NewMockUserResolver()
		workload.On("Groups").Return([]string{"engineering"})
		users.On("ResolveUsers", mock.Anything, mock.Anything).Return(people, nil)

		report := domain.Aggregate([]domain.Issue{
			{Project: domain.Project{Key: "OPS", Name: "Operations"}, EstimateSeconds: 3 * 8 * 3600},
			{Project: domain.Project{Key: "WEB", Name: "Website"}, EstimateSeconds: 3600},
		}, domain.GroupByProject)
		report.AttachLinks("https://acme.atlassian.net", []string{"acc-2"}, domain.DueRange{})

		workload.On("GetWorkload", mock.Anything, ports.WorkloadRequest{
			AssigneeID: "acc-2",
			GroupBy:    domain.GroupByProject,
		}).Return(report, nil)

		rec := httptest.NewRecorder()
		newDashboardRouter(t, workload, users).ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/?assignee=acc-2", nil))

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<option value="acc-2" selected>Bob Jones</option>`)
		assert.Contains(t, body, "<td>Operations</td>")
		assert.Contains(t, body, "<td>24.00</td>")
		assert.Contains(t, body, "0 weeks, 3 days, 0 hours")
		assert.Contains(t, body, "<strong>Total</strong>")
		assert.Contains(t, body, "<strong>25.00</strong>")
		assert.Contains(t, body, "https://acme.atlassian.net/issues/?jql=")
	})

	t.Run("tracker failure is shown in the table", func(t *testing.T) {
		workload := mocks.NewMockWorkloadService()
		users := mocks.NewMockUserResolver()
		workload.On("Groups").Return([]string{"engineering"})
		users.On("ResolveUsers", mock.Anything, mock.Anything).Return(people, nil)
		workload.On("GetWorkload", mock.Anything, mock.Anything).
			Return(nil, &apperrors.TrackerError{Method: "POST", Endpoint: "/rest/api/3/search/jql", StatusCode: 503, Body: "down"})

		rec := httptest.NewRecorder()
		newDashboardRouter(t, workload, users).ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/?group=engineering", nil))

		assert.Equal(t, stdhttp.StatusBadGateway, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `class="error-row"`)
		assert.Contains(t, body, "(HTTP 503)")
		assert.NotContains(t, body, "row-total")
	})

	t.Run("invalid range lists field errors", func(t *testing.T) {
		workload := mocks.NewMockWorkloadService()
		users := mocks.NewMockUserResolver()
		workload.On("Groups").Return([]string{"engineering"})
		users.On("ResolveUsers", mock.Anything, mock.Anything).Return(people, nil)

		rec := httptest.NewRecorder()
		target := "/?assignee=acc-1&start=2025-05-01&end=2025-04-01"
		newDashboardRouter(t, workload, users).ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, target, nil))

		assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `class="field-errors"`)
		assert.Contains(t, body, `value="2025-05-01"`)
		workload.AssertNotCalled(t, "GetWorkload", mock.Anything, mock.Anything)
	})
}
