package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/workload-dashboard/internal/adapters/primary/validation"
	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
)

// Renderer renders a named view, optionally inside a layout.
type Renderer interface {
	Render(out io.Writer, name string, binding interface{}, layout ...string) error
}

const (
	dashboardView   = "dashboard"
	dashboardLayout = "layouts/main"
)

// DashboardHandler serves the server-rendered dashboard page.
type DashboardHandler struct {
	workload     ports.WorkloadService
	users        ports.UserResolver
	views        Renderer
	errorHandler *ErrorHandler
	title        string
	logger       *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	workload ports.WorkloadService,
	users ports.UserResolver,
	views Renderer,
	errorHandler *ErrorHandler,
	title string,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		workload:     workload,
		users:        users,
		views:        views,
		errorHandler: errorHandler,
		title:        title,
		logger:       logger.With("handler", "dashboard"),
	}
}

// DashboardPage is the data bound to the dashboard view.
type DashboardPage struct {
	Title   string
	Users   []Option
	Groups  []Option
	GroupBy []Option
	Start   string
	End     string
	Report  *ReportView
	Error   string
	Fields  map[string][]string
}

// Option is one entry of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ReportView is a workload report prepared for the results table.
type ReportView struct {
	ShowProject  bool
	ShowEmployee bool
	Rows         []domain.WorkloadRow
	Total        domain.WorkloadRow
	Empty        bool
}

// RegisterRoutes registers the dashboard page.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleDashboard)
}

// HandleDashboard handles GET /. When the query names a person or a group
// the workload table is rendered too; failures are shown in the page.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK

	query, err := validation.QueryFromValues(r.URL.Query())
	page := DashboardPage{
		Title:   h.title,
		Start:   query.Start,
		End:     query.End,
		Groups:  groupOptions(h.workload.Groups(), query.Group),
		GroupBy: groupByOptions(query.GroupBy),
	}
	if err != nil {
		status = h.fail(r, &page, err)
	}

	users, err := h.users.ResolveUsers(ctx, h.workload.Groups())
	if err != nil {
		status = h.fail(r, &page, err)
	}
	page.Users = userOptions(users, query.Assignee)

	if page.Error == "" && (query.Assignee != "" || query.Group != "") {
		if report, err := h.loadReport(r, query); err != nil {
			status = h.fail(r, &page, err)
		} else {
			page.Report = report
		}
	}

	var buf bytes.Buffer
	if err := h.views.Render(&buf, dashboardView, page, dashboardLayout); err != nil {
		h.errorHandler.Handle(w, r, fmt.Errorf("render dashboard: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *DashboardHandler) loadReport(r *http.Request, query validation.WorkloadQuery) (*ReportView, error) {
	req, err := query.Validate()
	if err != nil {
		return nil, err
	}

	report, err := h.workload.GetWorkload(r.Context(), req)
	if err != nil {
		return nil, err
	}

	return &ReportView{
		ShowProject:  report.GroupBy.ByProject(),
		ShowEmployee: report.GroupBy.ByEmployee(),
		Rows:         report.Rows,
		Total:        report.Total,
		Empty:        report.Empty,
	}, nil
}

// fail records err on the page and returns the status to answer with.
func (h *DashboardHandler) fail(r *http.Request, page *DashboardPage, err error) int {
	status, resp := h.errorHandler.Describe(err)
	h.errorHandler.logError(r, status, err)

	page.Error = resp.Error
	var trackerErr *apperrors.TrackerError
	if errors.As(err, &trackerErr) {
		page.Error = fmt.Sprintf("%s (HTTP %d)", resp.Error, trackerErr.StatusCode)
	}

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		page.Fields = validationErrs.Errors
	}
	return status
}

func userOptions(users []domain.User, selected string) []Option {
	opts := make([]Option, 0, len(users))
	for _, u := range users {
		opts = append(opts, Option{
			Value:    u.AccountID,
			Label:    u.DisplayName,
			Selected: u.AccountID == selected,
		})
	}
	return opts
}

func groupOptions(groups []string, selected string) []Option {
	opts := make([]Option, 0, len(groups))
	for _, g := range groups {
		opts = append(opts, Option{Value: g, Label: g, Selected: g == selected})
	}
	return opts
}

func groupByOptions(selected string) []Option {
	if selected == "" {
		selected = domain.GroupByProject.String()
	}
	modes := []struct {
		mode  domain.GroupBy
		label string
	}{
		{domain.GroupByProject, "Project"},
		{domain.GroupByEmployee, "Employee"},
		{domain.GroupByProjectEmployee, "Project and employee"},
	}

	opts := make([]Option, 0, len(modes))
	for _, m := range modes {
		opts = append(opts, Option{
			Value:    m.mode.String(),
			Label:    m.label,
			Selected: m.mode.String() == selected,
		})
	}
	return opts
}
