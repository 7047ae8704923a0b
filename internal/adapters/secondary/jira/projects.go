package jira

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
)

type projectDTO struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (p projectDTO) toDomain() domain.Project {
	return domain.Project{ID: p.ID, Key: p.Key, Name: p.Name}
}

type projectPage struct {
	Values []projectDTO `json:"values"`
	Total  int          `json:"total"`
	IsLast bool         `json:"isLast"`
}

// ListProjects returns every project visible to the account.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	startAt := 0

	for {
		query := url.Values{
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(c.cfg.ProjectPageSize)},
		}

		var page projectPage
		if err := c.doJSON(ctx, http.MethodGet, "/rest/api/3/project/search", query, nil, &page); err != nil {
			return nil, err
		}
		for _, p := range page.Values {
			projects = append(projects, p.toDomain())
		}

		if page.IsLast || len(page.Values) == 0 || startAt+len(page.Values) >= page.Total {
			break
		}
		startAt += len(page.Values)
	}

	return projects, nil
}
