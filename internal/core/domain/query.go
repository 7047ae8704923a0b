package domain

import (
	"net/url"
	"strings"
)

// IssueQuery describes a JQL search scoped to open work.
type IssueQuery struct {
	ProjectKey  string
	AssigneeIDs []string
	Due         DueRange
	// IncludeClosed drops the status-category exclusion.
	IncludeClosed bool
}

// JQL renders the query. Clauses are joined with AND in a fixed order:
// project, assignee, status, due-date bounds.
func (q IssueQuery) JQL() string {
	var clauses []string

	if q.ProjectKey != "" {
		clauses = append(clauses, "project = "+quoteJQL(q.ProjectKey))
	}

	if len(q.AssigneeIDs) > 0 {
		quoted := make([]string, 0, len(q.AssigneeIDs))
		for _, id := range q.AssigneeIDs {
			quoted = append(quoted, quoteJQL(id))
		}
		clauses = append(clauses, "assignee in ("+strings.Join(quoted, ", ")+")")
	}

	if !q.IncludeClosed {
		quoted := make([]string, 0, len(ClosedStatusCategories))
		for _, c := range ClosedStatusCategories {
			quoted = append(quoted, quoteJQL(c))
		}
		clauses = append(clauses, "statusCategory NOT IN ("+strings.Join(quoted, ", ")+")")
	}

	if q.Due.Start != nil {
		clauses = append(clauses, "duedate >= "+quoteJQL(q.Due.Start.Format(DateLayout)))
	}
	if q.Due.End != nil {
		clauses = append(clauses, "duedate <= "+quoteJQL(q.Due.End.Format(DateLayout)))
	}

	return strings.Join(clauses, " AND ")
}

// BuildSearchURL returns the tracker's issue-search page for the query.
func BuildSearchURL(baseURL string, q IssueQuery) string {
	base := strings.TrimRight(baseURL, "/")
	return base + "/issues/?jql=" + url.QueryEscape(q.JQL())
}

func quoteJQL(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
