package services

import (
	"context"
	"fmt"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
)

// ProjectService serves project listings and open-issue counts.
type ProjectService struct {
	tracker  ports.TrackerClient
	resolver ports.UserResolver
}

var _ ports.ProjectService = (*ProjectService)(nil)

// NewProjectService creates a new project service.
func NewProjectService(tracker ports.TrackerClient, resolver ports.UserResolver) *ProjectService {
	return &ProjectService{
		tracker:  tracker,
		resolver: resolver,
	}
}

// ListProjects returns every project visible to the tracker account.
func (s *ProjectService) ListProjects(ctx context.Context) (*ports.ProjectSummary, error) {
	projects, err := s.tracker.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &ports.ProjectSummary{
		Projects: projects,
		Total:    len(projects),
	}, nil
}

// CountOpenIssues returns the number of open issues for the selection.
// An empty selection counts open issues across the whole site.
func (s *ProjectService) CountOpenIssues(ctx context.Context, req ports.WorkloadRequest) (int64, error) {
	query := domain.IssueQuery{Due: req.Due}

	switch {
	case req.AssigneeID != "":
		query.AssigneeIDs = []string{req.AssigneeID}
	case req.GroupName != "":
		members, err := s.resolver.ResolveGroup(ctx, req.GroupName)
		if err != nil {
			return 0, err
		}
		if len(members) == 0 {
			return 0, nil
		}
		query.AssigneeIDs = domain.AccountIDs(members)
	}

	count, err := s.tracker.CountIssues(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	return count, nil
}
