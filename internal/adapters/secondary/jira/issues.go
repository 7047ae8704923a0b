package jira

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
)

// searchFields are the issue fields the aggregator reads.
var searchFields = []string{"project", "timeoriginalestimate", "duedate", "assignee", "status"}

type searchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults"`
	Fields        []string `json:"fields"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type searchResponse struct {
	Issues        []issueDTO `json:"issues"`
	NextPageToken string     `json:"nextPageToken"`
	IsLast        bool       `json:"isLast"`
}

type issueDTO struct {
	Key    string `json:"key"`
	Fields struct {
		Project              *projectDTO `json:"project"`
		TimeOriginalEstimate *int64      `json:"timeoriginalestimate"`
		DueDate              string      `json:"duedate"`
		Assignee             *userDTO    `json:"assignee"`
		Status               *struct {
			StatusCategory *struct {
				Name string `json:"name"`
			} `json:"statusCategory"`
		} `json:"status"`
	} `json:"fields"`
}

type countRequest struct {
	JQL string `json:"jql"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// SearchIssues returns every issue matching the query. Pages are followed
// via nextPageToken until the tracker reports the last page.
func (c *Client) SearchIssues(ctx context.Context, query domain.IssueQuery) ([]domain.Issue, error) {
	req := searchRequest{
		JQL:        query.JQL(),
		MaxResults: c.cfg.SearchPageSize,
		Fields:     searchFields,
	}

	var issues []domain.Issue
	for page := 0; ; page++ {
		if page >= c.cfg.MaxSearchPages {
			return nil, fmt.Errorf("%w: more than %d pages for %q", apperrors.ErrTooManyPages, c.cfg.MaxSearchPages, req.JQL)
		}

		var resp searchResponse
		if err := c.doJSON(ctx, http.MethodPost, "/rest/api/3/search/jql", nil, req, &resp); err != nil {
			return nil, err
		}
		for _, dto := range resp.Issues {
			issues = append(issues, c.toIssue(ctx, dto))
		}

		if resp.IsLast || resp.NextPageToken == "" {
			break
		}
		req.NextPageToken = resp.NextPageToken
	}

	c.logger.DebugContext(ctx, "issues fetched", "jql", req.JQL, "issues", len(issues))
	return issues, nil
}

// CountIssues returns the tracker's approximate count for the query.
func (c *Client) CountIssues(ctx context.Context, query domain.IssueQuery) (int64, error) {
	var resp countResponse
	err := c.doJSON(ctx, http.MethodPost, "/rest/api/3/search/approximate-count", nil, countRequest{JQL: query.JQL()}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) toIssue(ctx context.Context, dto issueDTO) domain.Issue {
	f := dto.Fields
	issue := domain.Issue{Key: dto.Key}

	if f.Project != nil {
		issue.Project = f.Project.toDomain()
	}
	if f.TimeOriginalEstimate != nil {
		issue.EstimateSeconds = *f.TimeOriginalEstimate
	}
	if f.Assignee != nil {
		issue.Assignee = &domain.Assignee{
			AccountID:   f.Assignee.AccountID,
			DisplayName: f.Assignee.DisplayName,
		}
	}
	if f.Status != nil && f.Status.StatusCategory != nil {
		issue.StatusCategory = f.Status.StatusCategory.Name
	}

	due, err := domain.ParseDueDate(f.DueDate)
	if err != nil {
		c.logger.WarnContext(ctx, "ignoring malformed due date", "issue", dto.Key, "duedate", f.DueDate)
	}
	issue.DueDate = due

	return issue
}
