package ports

import (
	"context"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
)

// UserResolver defines the port for turning group names into people.
type UserResolver interface {
	ResolveUsers(ctx context.Context, groupNames []string) ([]domain.User, error)
	ResolveGroup(ctx context.Context, groupName string) ([]domain.User, error)
}

// WorkloadRequest selects either one assignee or one group.
type WorkloadRequest struct {
	AssigneeID string
	GroupName  string
	GroupBy    domain.GroupBy
	Due        domain.DueRange
}

// IsGroupView reports whether the request targets a group.
func (r WorkloadRequest) IsGroupView() bool {
	return r.GroupName != ""
}

// WorkloadService defines the port for computing workload reports.
type WorkloadService interface {
	GetWorkload(ctx context.Context, req WorkloadRequest) (*domain.WorkloadReport, error)
	// Groups lists the configured group names in display order.
	Groups() []string
}

// ProjectSummary is the project listing shown next to the workload table.
type ProjectSummary struct {
	Projects []domain.Project
	Total    int
}

// ProjectService defines the port for project and issue-count lookups.
type ProjectService interface {
	ListProjects(ctx context.Context) (*ProjectSummary, error)
	CountOpenIssues(ctx context.Context, req WorkloadRequest) (int64, error)
}
