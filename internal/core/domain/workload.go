package domain

import (
	"slices"
	"sort"
)

// GroupBy selects the partition used when aggregating issues.
type GroupBy string

const (
	GroupByProject         GroupBy = "project"
	GroupByEmployee        GroupBy = "employee"
	GroupByProjectEmployee GroupBy = "project_employee"
)

// IsValid checks if the grouping mode is one of the supported values.
func (g GroupBy) IsValid() bool {
	switch g {
	case GroupByProject, GroupByEmployee, GroupByProjectEmployee:
		return true
	}
	return false
}

// ByProject reports whether rows are partitioned by project.
func (g GroupBy) ByProject() bool {
	return g == GroupByProject || g == GroupByProjectEmployee
}

// ByEmployee reports whether rows are partitioned by assignee.
func (g GroupBy) ByEmployee() bool {
	return g == GroupByEmployee || g == GroupByProjectEmployee
}

func (g GroupBy) String() string {
	return string(g)
}

// RowKind distinguishes aggregate rows from synthetic ones.
type RowKind string

const (
	RowData        RowKind = "data"
	RowTotal       RowKind = "total"
	RowPlaceholder RowKind = "placeholder"
)

// Labels used for synthetic rows and missing values.
const (
	TotalLabel      = "Total"
	NoWorkLabel     = "No work assigned"
	UnassignedLabel = "Unassigned"
	NoProjectLabel  = "(no project)"
)

// WorkloadRow is one aggregated line of the workload table.
type WorkloadRow struct {
	Kind         RowKind  `json:"kind"`
	ProjectName  string   `json:"project,omitempty"`
	ProjectKey   string   `json:"projectKey,omitempty"`
	EmployeeName string   `json:"employee,omitempty"`
	EmployeeIDs  []string `json:"employeeIds,omitempty"`
	Issues       int      `json:"issues"`
	Seconds      int64    `json:"seconds"`
	Hours        float64  `json:"hours"`
	Label        string   `json:"label"`
	SearchURL    string   `json:"searchUrl"`
}

// WorkloadReport is the aggregated result for one selection.
type WorkloadReport struct {
	GroupBy GroupBy       `json:"groupBy"`
	Rows    []WorkloadRow `json:"rows"`
	Total   WorkloadRow   `json:"total"`
	// Empty is set when no issues matched; Rows then holds a single
	// placeholder row.
	Empty bool `json:"empty"`
}

type groupKey struct {
	project  string
	employee string
}

// Aggregate groups issues by the requested mode and sums their effort.
// Issues in a closed status category are skipped. The total row is computed
// from the ungrouped open issues.
func Aggregate(issues []Issue, groupBy GroupBy) *WorkloadReport {
	report := &WorkloadReport{GroupBy: groupBy}

	var (
		open         int
		totalSeconds int64
		order        []groupKey
		acc          = make(map[groupKey]*WorkloadRow)
	)

	for _, issue := range issues {
		if issue.IsClosed() {
			continue
		}
		open++
		effort := issue.Effort()
		totalSeconds += effort

		key, projectKey, employeeID := partition(issue, groupBy)
		row, ok := acc[key]
		if !ok {
			row = &WorkloadRow{
				Kind:         RowData,
				ProjectName:  key.project,
				EmployeeName: key.employee,
			}
			acc[key] = row
			order = append(order, key)
		}
		if row.ProjectKey == "" {
			row.ProjectKey = projectKey
		}
		if employeeID != "" && !slices.Contains(row.EmployeeIDs, employeeID) {
			row.EmployeeIDs = append(row.EmployeeIDs, employeeID)
		}
		row.Issues++
		row.Seconds += effort
	}

	if open == 0 {
		report.Empty = true
		report.Rows = []WorkloadRow{newRow(RowPlaceholder, NoWorkLabel, 0, 0)}
		report.Total = newRow(RowTotal, TotalLabel, 0, 0)
		return report
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].project != order[j].project {
			return order[i].project < order[j].project
		}
		return order[i].employee < order[j].employee
	})

	report.Rows = make([]WorkloadRow, 0, len(order))
	for _, key := range order {
		row := acc[key]
		d := FormatDuration(row.Seconds)
		row.Hours, row.Label = d.Hours, d.Label
		report.Rows = append(report.Rows, *row)
	}
	report.Total = newRow(RowTotal, TotalLabel, open, totalSeconds)

	return report
}

// AttachLinks sets a drill-down search URL on every row. memberIDs is the
// full assignee scope of the selection; rows without an employee link to
// issues of all members. Employee rows link to every account merged into them.
func (r *WorkloadReport) AttachLinks(baseURL string, memberIDs []string, due DueRange) {
	for i := range r.Rows {
		row := &r.Rows[i]
		q := IssueQuery{AssigneeIDs: memberIDs, Due: due}
		if row.Kind == RowData {
			if r.GroupBy.ByProject() {
				q.ProjectKey = row.ProjectKey
			}
			if r.GroupBy.ByEmployee() && len(row.EmployeeIDs) > 0 {
				q.AssigneeIDs = row.EmployeeIDs
			}
		}
		row.SearchURL = BuildSearchURL(baseURL, q)
	}
	r.Total.SearchURL = BuildSearchURL(baseURL, IssueQuery{AssigneeIDs: memberIDs, Due: due})
}

func partition(issue Issue, groupBy GroupBy) (groupKey, string, string) {
	var (
		key        groupKey
		projectKey string
		employeeID string
	)

	if groupBy.ByProject() {
		key.project = issue.Project.Name
		if key.project == "" {
			key.project = issue.Project.Key
		}
		if key.project == "" {
			key.project = NoProjectLabel
		}
		projectKey = issue.Project.Key
	}

	if groupBy.ByEmployee() {
		key.employee = UnassignedLabel
		if issue.Assignee != nil {
			if issue.Assignee.DisplayName != "" {
				key.employee = NormalizeDisplayName(issue.Assignee.DisplayName)
			}
			employeeID = issue.Assignee.AccountID
		}
	}

	return key, projectKey, employeeID
}

func newRow(kind RowKind, label string, issues int, seconds int64) WorkloadRow {
	d := FormatDuration(seconds)
	return WorkloadRow{
		Kind:        kind,
		ProjectName: label,
		Issues:      issues,
		Seconds:     seconds,
		Hours:       d.Hours,
		Label:       d.Label,
	}
}
