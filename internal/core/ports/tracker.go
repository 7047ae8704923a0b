package ports

import (
	"context"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
)

// TrackerClient is the port to the issue tracker's REST API.
type TrackerClient interface {
	// GroupMembers returns every member of a group, following pagination.
	// A missing group yields an error wrapping errors.ErrGroupNotFound.
	GroupMembers(ctx context.Context, groupName string) ([]domain.User, error)
	// SearchIssues returns every issue matching the query.
	SearchIssues(ctx context.Context, query domain.IssueQuery) ([]domain.Issue, error)
	// CountIssues returns the tracker's approximate match count.
	CountIssues(ctx context.Context, query domain.IssueQuery) (int64, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	Ping(ctx context.Context) error
	// BaseURL is the site root used for browser links.
	BaseURL() string
}
