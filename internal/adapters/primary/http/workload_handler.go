package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/workload-dashboard/internal/adapters/primary/validation"
	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
)

// UserDTO is a selectable person.
type UserDTO struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// ProjectDTO is a tracker project.
type ProjectDTO struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// WorkloadResponse carries a report and echoes the request's sequence number.
type WorkloadResponse struct {
	Seq    int64                  `json:"seq"`
	Report *domain.WorkloadReport `json:"report"`
}

// CountResponse carries an open-issue count.
type CountResponse struct {
	Seq   int64 `json:"seq"`
	Count int64 `json:"count"`
}

// WorkloadHandler serves the JSON API behind the dashboard.
type WorkloadHandler struct {
	workload     ports.WorkloadService
	projects     ports.ProjectService
	users        ports.UserResolver
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewWorkloadHandler creates a new WorkloadHandler.
func NewWorkloadHandler(
	workload ports.WorkloadService,
	projects ports.ProjectService,
	users ports.UserResolver,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *WorkloadHandler {
	return &WorkloadHandler{
		workload:     workload,
		projects:     projects,
		users:        users,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "workload"),
	}
}

// RegisterRoutes registers the /api/v1 routes.
func (h *WorkloadHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.HandleListUsers)
	r.Get("/groups", h.HandleListGroups)
	r.Get("/workload", h.HandleGetWorkload)
	r.Get("/projects", h.HandleListProjects)
	r.Get("/issues/count", h.HandleCountIssues)
}

// HandleListUsers handles GET /users[?group=].
// Without a group, members of every configured group are listed.
func (h *WorkloadHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	var (
		users []domain.User
		err   error
	)

	if group := strings.TrimSpace(r.URL.Query().Get("group")); group != "" {
		if err := h.checkGroup(group); err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
		users, err = h.users.ResolveGroup(r.Context(), group)
	} else {
		users, err = h.users.ResolveUsers(r.Context(), h.workload.Groups())
	}
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteList(w, mapUsers(users))
}

// HandleListGroups handles GET /groups.
func (h *WorkloadHandler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	WriteList(w, h.workload.Groups())
}

// HandleGetWorkload handles GET /workload.
func (h *WorkloadHandler) HandleGetWorkload(w http.ResponseWriter, r *http.Request) {
	query, err := validation.QueryFromValues(r.URL.Query())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	req, err := query.Validate()
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	report, err := h.workload.GetWorkload(r.Context(), req)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, WorkloadResponse{Seq: query.Seq, Report: report})
}

// HandleListProjects handles GET /projects.
func (h *WorkloadHandler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	summary, err := h.projects.ListProjects(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	projects := make([]ProjectDTO, 0, len(summary.Projects))
	for _, p := range summary.Projects {
		projects = append(projects, ProjectDTO{ID: p.ID, Key: p.Key, Name: p.Name})
	}
	WriteList(w, projects)
}

// HandleCountIssues handles GET /issues/count. Without a selection the
// whole site's open issues are counted.
func (h *WorkloadHandler) HandleCountIssues(w http.ResponseWriter, r *http.Request) {
	query, err := validation.QueryFromValues(r.URL.Query())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	req, err := query.Validate()
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if req.GroupName != "" {
		if err := h.checkGroup(req.GroupName); err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
	}

	count, err := h.projects.CountOpenIssues(r.Context(), req)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, CountResponse{Seq: query.Seq, Count: count})
}

func (h *WorkloadHandler) checkGroup(group string) error {
	groups := h.workload.Groups()
	if len(groups) == 0 || slices.Contains(groups, group) {
		return nil
	}
	return apperrors.NewNotFoundError(apperrors.ErrUnknownGroup, fmt.Sprintf("Group %q is not available", group))
}

func mapUsers(users []domain.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, UserDTO{
			AccountID:   u.AccountID,
			DisplayName: u.DisplayName,
			Email:       u.Email,
		})
	}
	return out
}
