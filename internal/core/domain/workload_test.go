package domain_test

import (
	"math/rand"
	"net/url"
	"testing"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issue(projectKey, projectName string, estimate int64, assignee *domain.Assignee) domain.Issue {
	return domain.Issue{
		Project:         domain.Project{Key: projectKey, Name: projectName},
		EstimateSeconds: estimate,
		Assignee:        assignee,
	}
}

func rowIssues(r *domain.WorkloadReport) int {
	n := 0
	for _, row := range r.Rows {
		n += row.Issues
	}
	return n
}

func rowSeconds(r *domain.WorkloadReport) int64 {
	var s int64
	for _, row := range r.Rows {
		s += row.Seconds
	}
	return s
}

func TestAggregate_ByProject(t *testing.T) {
	issues := []domain.Issue{
		issue("A", "A", 3600, nil),
		issue("A", "A", 7200, nil),
		issue("B", "B", 0, nil),
	}

	report := domain.Aggregate(issues, domain.GroupByProject)

	require.False(t, report.Empty)
	require.Len(t, report.Rows, 2)

	assert.Equal(t, "A", report.Rows[0].ProjectName)
	assert.Equal(t, 2, report.Rows[0].Issues)
	assert.Equal(t, int64(10800), report.Rows[0].Seconds)
	assert.Equal(t, 3.0, report.Rows[0].Hours)
	assert.Equal(t, "0 weeks, 0 days, 3 hours", report.Rows[0].Label)

	assert.Equal(t, "B", report.Rows[1].ProjectName)
	assert.Equal(t, 1, report.Rows[1].Issues)
	assert.Equal(t, int64(0), report.Rows[1].Seconds)

	assert.Equal(t, domain.RowTotal, report.Total.Kind)
	assert.Equal(t, domain.TotalLabel, report.Total.ProjectName)
	assert.Equal(t, 3, report.Total.Issues)
	assert.Equal(t, int64(10800), report.Total.Seconds)
}

func TestAggregate_ByProjectEmployee(t *testing.T) {
	alice := &domain.Assignee{AccountID: "acc-alice", DisplayName: "alice smith"}
	bob := &domain.Assignee{AccountID: "acc-bob", DisplayName: "Bob Jones"}

	issues := []domain.Issue{
		issue("OPS", "Operations", 3600, bob),
		issue("OPS", "Operations", 3600, alice),
		issue("OPS", "Operations", 1800, alice),
		issue("DEV", "Development", 7200, bob),
	}

	report := domain.Aggregate(issues, domain.GroupByProjectEmployee)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, "Development", report.Rows[0].ProjectName)
	assert.Equal(t, "Bob Jones", report.Rows[0].EmployeeName)
	assert.Equal(t, "Operations", report.Rows[1].ProjectName)
	assert.Equal(t, "Alice Smith", report.Rows[1].EmployeeName)
	assert.Equal(t, []string{"acc-alice"}, report.Rows[1].EmployeeIDs)
	assert.Equal(t, "OPS", report.Rows[1].ProjectKey)
	assert.Equal(t, 2, report.Rows[1].Issues)
	assert.Equal(t, int64(5400), report.Rows[1].Seconds)
	assert.Equal(t, "Bob Jones", report.Rows[2].EmployeeName)
}

func TestAggregate_ByEmployee(t *testing.T) {
	alice := &domain.Assignee{AccountID: "acc-alice", DisplayName: "Alice"}

	issues := []domain.Issue{
		issue("OPS", "Operations", 3600, alice),
		issue("DEV", "Development", 3600, alice),
		issue("DEV", "Development", 3600, nil),
	}

	report := domain.Aggregate(issues, domain.GroupByEmployee)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Alice", report.Rows[0].EmployeeName)
	assert.Equal(t, 2, report.Rows[0].Issues)
	assert.Empty(t, report.Rows[0].ProjectName)
	assert.Equal(t, domain.UnassignedLabel, report.Rows[1].EmployeeName)
}

func TestAggregate_FirstProjectKeyIsRepresentative(t *testing.T) {
	issues := []domain.Issue{
		issue("", "Shared", 60, nil),
		issue("SHR", "Shared", 60, nil),
		issue("OTHER", "Shared", 60, nil),
	}

	report := domain.Aggregate(issues, domain.GroupByProject)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, "SHR", report.Rows[0].ProjectKey)
}

func TestAggregate_Empty(t *testing.T) {
	report := domain.Aggregate(nil, domain.GroupByProject)

	require.True(t, report.Empty)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, domain.RowPlaceholder, report.Rows[0].Kind)
	assert.Equal(t, domain.NoWorkLabel, report.Rows[0].ProjectName)
	assert.Zero(t, report.Rows[0].Issues)
	assert.Zero(t, report.Rows[0].Seconds)
	assert.Zero(t, report.Total.Issues)
	assert.Zero(t, report.Total.Seconds)
}

func TestAggregate_SkipsClosedIssues(t *testing.T) {
	done := issue("A", "A", 7200, nil)
	done.StatusCategory = domain.StatusCategoryDone
	cancelled := issue("B", "B", 3600, nil)
	cancelled.StatusCategory = domain.StatusCategoryCancelled
	open := issue("A", "A", 1800, nil)
	open.StatusCategory = "In Progress"

	report := domain.Aggregate([]domain.Issue{done, cancelled, open}, domain.GroupByProject)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, "A", report.Rows[0].ProjectName)
	assert.Equal(t, 1, report.Rows[0].Issues)
	assert.Equal(t, int64(1800), report.Rows[0].Seconds)
	assert.Equal(t, 1, report.Total.Issues)
	assert.Equal(t, int64(1800), report.Total.Seconds)

	t.Run("only closed issues", func(t *testing.T) {
		report := domain.Aggregate([]domain.Issue{done, cancelled}, domain.GroupByProject)

		require.True(t, report.Empty)
		assert.Equal(t, domain.RowPlaceholder, report.Rows[0].Kind)
		assert.Zero(t, report.Total.Issues)
	})
}

func TestAggregate_NegativeEstimateClamped(t *testing.T) {
	report := domain.Aggregate([]domain.Issue{issue("A", "A", -500, nil)}, domain.GroupByProject)

	assert.Equal(t, int64(0), report.Rows[0].Seconds)
	assert.Equal(t, int64(0), report.Total.Seconds)
}

func TestAggregate_ConservesEffortAndCount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	projects := []string{"A", "B", "C", "D"}
	people := []*domain.Assignee{
		{AccountID: "1", DisplayName: "one"},
		{AccountID: "2", DisplayName: "two"},
		nil,
	}
	modes := []domain.GroupBy{domain.GroupByProject, domain.GroupByEmployee, domain.GroupByProjectEmployee}

	for round := 0; round < 50; round++ {
		n := rng.Intn(40) + 1
		issues := make([]domain.Issue, 0, n)
		var wantSeconds int64
		for i := 0; i < n; i++ {
			p := projects[rng.Intn(len(projects))]
			est := int64(rng.Intn(50_000))
			wantSeconds += est
			issues = append(issues, issue(p, p, est, people[rng.Intn(len(people))]))
		}

		for _, mode := range modes {
			report := domain.Aggregate(issues, mode)
			assert.Equal(t, wantSeconds, rowSeconds(report), "mode=%s", mode)
			assert.Equal(t, n, rowIssues(report), "mode=%s", mode)
			assert.Equal(t, wantSeconds, report.Total.Seconds, "mode=%s", mode)
			assert.Equal(t, n, report.Total.Issues, "mode=%s", mode)
		}
	}
}

func TestWorkloadReport_AttachLinks(t *testing.T) {
	alice := &domain.Assignee{AccountID: "acc-alice", DisplayName: "Alice"}
	members := []string{"acc-alice", "acc-bob"}
	base := "https://example.atlassian.net"

	jqlOf := func(t *testing.T, link string) string {
		t.Helper()
		u, err := url.Parse(link)
		require.NoError(t, err)
		return u.Query().Get("jql")
	}

	t.Run("project rows list every member", func(t *testing.T) {
		report := domain.Aggregate([]domain.Issue{issue("OPS", "Operations", 60, alice)}, domain.GroupByProject)
		report.AttachLinks(base, members, domain.DueRange{})

		assert.Equal(t,
			`project = "OPS" AND assignee in ("acc-alice", "acc-bob") AND statusCategory NOT IN ("Done", "Cancelled")`,
			jqlOf(t, report.Rows[0].SearchURL))
		assert.Equal(t,
			`assignee in ("acc-alice", "acc-bob") AND statusCategory NOT IN ("Done", "Cancelled")`,
			jqlOf(t, report.Total.SearchURL))
	})

	t.Run("employee rows narrow to one assignee", func(t *testing.T) {
		report := domain.Aggregate([]domain.Issue{issue("OPS", "Operations", 60, alice)}, domain.GroupByProjectEmployee)
		report.AttachLinks(base, members, domain.DueRange{})

		assert.Equal(t,
			`project = "OPS" AND assignee in ("acc-alice") AND statusCategory NOT IN ("Done", "Cancelled")`,
			jqlOf(t, report.Rows[0].SearchURL))
	})

	t.Run("merged display names link to every account", func(t *testing.T) {
		twin := &domain.Assignee{AccountID: "acc-alice-2", DisplayName: "Alice"}
		report := domain.Aggregate([]domain.Issue{
			issue("OPS", "Operations", 60, alice),
			issue("OPS", "Operations", 60, twin),
			issue("OPS", "Operations", 60, alice),
		}, domain.GroupByEmployee)
		report.AttachLinks(base, []string{"acc-alice", "acc-alice-2"}, domain.DueRange{})

		require.Len(t, report.Rows, 1)
		assert.Equal(t, 3, report.Rows[0].Issues)
		assert.Equal(t, []string{"acc-alice", "acc-alice-2"}, report.Rows[0].EmployeeIDs)
		assert.Equal(t,
			`assignee in ("acc-alice", "acc-alice-2") AND statusCategory NOT IN ("Done", "Cancelled")`,
			jqlOf(t, report.Rows[0].SearchURL))
	})

	t.Run("placeholder row links to the whole scope", func(t *testing.T) {
		report := domain.Aggregate(nil, domain.GroupByProject)
		report.AttachLinks(base, members, domain.DueRange{})

		assert.Equal(t, report.Total.SearchURL, report.Rows[0].SearchURL)
	})
}

func TestGroupBy_IsValid(t *testing.T) {
	assert.True(t, domain.GroupByProject.IsValid())
	assert.True(t, domain.GroupByEmployee.IsValid())
	assert.True(t, domain.GroupByProjectEmployee.IsValid())
	assert.False(t, domain.GroupBy("team").IsValid())
	assert.False(t, domain.GroupBy("").IsValid())
}
