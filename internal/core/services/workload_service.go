package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
)

// WorkloadService computes workload reports for a person or a group.
type WorkloadService struct {
	tracker  ports.TrackerClient
	resolver ports.UserResolver
	groups   []string
	logger   *slog.Logger
}

var _ ports.WorkloadService = (*WorkloadService)(nil)

// NewWorkloadService creates a new workload service. groups is the set of
// group names the dashboard offers; group requests outside it are rejected.
func NewWorkloadService(
	tracker ports.TrackerClient,
	resolver ports.UserResolver,
	groups []string,
	logger *slog.Logger,
) *WorkloadService {
	return &WorkloadService{
		tracker:  tracker,
		resolver: resolver,
		groups:   groups,
		logger:   logger.With("component", "workload_service"),
	}
}

// Groups returns the configured group names.
func (s *WorkloadService) Groups() []string {
	out := make([]string, len(s.groups))
	copy(out, s.groups)
	return out
}

// GetWorkload fetches open issues for the selection and aggregates them.
// The person view is always grouped by project; the employee column only
// applies to groups. Tracker failures are returned as errors wrapping
// apperrors.ErrTrackerRequest.
func (s *WorkloadService) GetWorkload(ctx context.Context, req ports.WorkloadRequest) (*domain.WorkloadReport, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if !req.IsGroupView() {
		req.GroupBy = domain.GroupByProject
	}

	start := time.Now()

	memberIDs, err := s.scope(ctx, req)
	if err != nil {
		return nil, err
	}

	var issues []domain.Issue
	if len(memberIDs) > 0 {
		issues, err = s.tracker.SearchIssues(ctx, domain.IssueQuery{
			AssigneeIDs: memberIDs,
			Due:         req.Due,
		})
		if err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}
	}

	report := domain.Aggregate(issues, req.GroupBy)
	report.AttachLinks(s.tracker.BaseURL(), memberIDs, req.Due)

	s.logger.InfoContext(ctx, "workload computed",
		"assignee_id", req.AssigneeID,
		"group", req.GroupName,
		"group_by", req.GroupBy.String(),
		"issues", report.Total.Issues,
		"rows", len(report.Rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}

// scope returns the assignee ids the request covers.
func (s *WorkloadService) scope(ctx context.Context, req ports.WorkloadRequest) ([]string, error) {
	if !req.IsGroupView() {
		return []string{req.AssigneeID}, nil
	}

	members, err := s.resolver.ResolveGroup(ctx, req.GroupName)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		s.logger.InfoContext(ctx, "group has no eligible members", "group", req.GroupName)
	}
	return domain.AccountIDs(members), nil
}

func (s *WorkloadService) validate(req ports.WorkloadRequest) error {
	errs := apperrors.NewValidationErrors()

	switch {
	case req.AssigneeID == "" && req.GroupName == "":
		errs.Add("selection", apperrors.ErrSelectionRequired.Error())
	case req.AssigneeID != "" && req.GroupName != "":
		errs.Add("selection", apperrors.ErrAmbiguousSelect.Error())
	}

	if !req.GroupBy.IsValid() {
		errs.Add("groupBy", apperrors.ErrInvalidGroupBy.Error())
	}

	if !req.Due.Valid() {
		errs.Add("end", apperrors.ErrInvalidDateRange.Error())
	}

	if errs.HasErrors() {
		return errs
	}

	if req.IsGroupView() && !s.isConfiguredGroup(req.GroupName) {
		return apperrors.NewNotFoundError(apperrors.ErrUnknownGroup, fmt.Sprintf("Group %q is not available", req.GroupName))
	}

	return nil
}

func (s *WorkloadService) isConfiguredGroup(name string) bool {
	if len(s.groups) == 0 {
		return true
	}
	for _, g := range s.groups {
		if g == name {
			return true
		}
	}
	return false
}
