package mocks

import (
	"context"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockTrackerClient is a mock implementation of ports.TrackerClient
type MockTrackerClient struct {
	mock.Mock
}

var _ ports.TrackerClient = (*MockTrackerClient)(nil)

func NewMockTrackerClient() *MockTrackerClient {
	return &MockTrackerClient{}
}

func (m *MockTrackerClient) GroupMembers(ctx context.Context, groupName string) ([]domain.User, error) {
	args := m.Called(ctx, groupName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockTrackerClient) SearchIssues(ctx context.Context, query domain.IssueQuery) ([]domain.Issue, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Issue), args.Error(1)
}

func (m *MockTrackerClient) CountIssues(ctx context.Context, query domain.IssueQuery) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrackerClient) ListProjects(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *MockTrackerClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTrackerClient) BaseURL() string {
	args := m.Called()
	return args.String(0)
}

// MockUserResolver is a mock implementation of ports.UserResolver
type MockUserResolver struct {
	mock.Mock
}

var _ ports.UserResolver = (*MockUserResolver)(nil)

func NewMockUserResolver() *MockUserResolver {
	return &MockUserResolver{}
}

func (m *MockUserResolver) ResolveUsers(ctx context.Context, groupNames []string) ([]domain.User, error) {
	args := m.Called(ctx, groupNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserResolver) ResolveGroup(ctx context.Context, groupName string) ([]domain.User, error) {
	args := m.Called(ctx, groupName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockWorkloadService is a mock implementation of ports.WorkloadService
type MockWorkloadService struct {
	mock.Mock
}

var _ ports.WorkloadService = (*MockWorkloadService)(nil)

func NewMockWorkloadService() *MockWorkloadService {
	return &MockWorkloadService{}
}

func (m *MockWorkloadService) GetWorkload(ctx context.Context, req ports.WorkloadRequest) (*domain.WorkloadReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkloadReport), args.Error(1)
}

func (m *MockWorkloadService) Groups() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

// MockProjectService is a mock implementation of ports.ProjectService
type MockProjectService struct {
	mock.Mock
}

var _ ports.ProjectService = (*MockProjectService)(nil)

func NewMockProjectService() *MockProjectService {
	return &MockProjectService{}
}

func (m *MockProjectService) ListProjects(ctx context.Context) (*ports.ProjectSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ProjectSummary), args.Error(1)
}

func (m *MockProjectService) CountOpenIssues(ctx context.Context, req ports.WorkloadRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}
