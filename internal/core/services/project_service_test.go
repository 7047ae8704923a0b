package services_test

import (
	"context"
	"testing"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	"github.com/lorrc/workload-dashboard/internal/core/mocks"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
	"github.com/lorrc/workload-dashboard/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProjectService_ListProjects(t *testing.T) {
	ctx := context.Background()
	tracker := mocks.NewMockTrackerClient()
	svc := services.NewProjectService(tracker, mocks.NewMockUserResolver())

	tracker.On("ListProjects", ctx).Return([]domain.Project{
		{Key: "OPS", Name: "Operations"},
		{Key: "DEV", Name: "Development"},
	}, nil)

	summary, err := svc.ListProjects(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, "OPS", summary.Projects[0].Key)
}

func TestProjectService_CountOpenIssues(t *testing.T) {
	ctx := context.Background()

	t.Run("assignee", func(t *testing.T) {
		tracker := mocks.NewMockTrackerClient()
		svc := services.NewProjectService(tracker, mocks.NewMockUserResolver())

		tracker.On("CountIssues", ctx, domain.IssueQuery{AssigneeIDs: []string{"acc-1"}}).Return(int64(12), nil)

		count, err := svc.CountOpenIssues(ctx, ports.WorkloadRequest{AssigneeID: "acc-1"})

		require.NoError(t, err)
		assert.Equal(t, int64(12), count)
	})

	t.Run("group members", func(t *testing.T) {
		tracker := mocks.NewMockTrackerClient()
		resolver := mocks.NewMockUserResolver()
		svc := services.NewProjectService(tracker, resolver)

		resolver.On("ResolveGroup", ctx, "staff").Return([]domain.User{{AccountID: "a"}, {AccountID: "b"}}, nil)
		tracker.On("CountIssues", ctx, domain.IssueQuery{AssigneeIDs: []string{"a", "b"}}).Return(int64(3), nil)

		count, err := svc.CountOpenIssues(ctx, ports.WorkloadRequest{GroupName: "staff"})

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("empty group counts zero", func(t *testing.T) {
		tracker := mocks.NewMockTrackerClient()
		resolver := mocks.NewMockUserResolver()
		svc := services.NewProjectService(tracker, resolver)

		resolver.On("ResolveGroup", ctx, "staff").Return([]domain.User{}, nil)

		count, err := svc.CountOpenIssues(ctx, ports.WorkloadRequest{GroupName: "staff"})

		require.NoError(t, err)
		assert.Zero(t, count)
		tracker.AssertNotCalled(t, "CountIssues", mock.Anything, mock.Anything)
	})
}
