package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
)

type userDTO struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	AccountType  string `json:"accountType"`
	Active       bool   `json:"active"`
}

func (u userDTO) toDomain() domain.User {
	return domain.User{
		AccountID:   u.AccountID,
		DisplayName: u.DisplayName,
		Email:       u.EmailAddress,
		AccountType: u.AccountType,
		Active:      u.Active,
	}
}

type groupMemberPage struct {
	Values []userDTO `json:"values"`
	Total  int       `json:"total"`
	IsLast bool      `json:"isLast"`
}

// GroupMembers returns every member of the named group, following
// pagination. A missing group yields an error wrapping
// apperrors.ErrGroupNotFound.
func (c *Client) GroupMembers(ctx context.Context, groupName string) ([]domain.User, error) {
	var members []domain.User
	startAt := 0

	for {
		query := url.Values{
			"groupname":  {groupName},
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(c.cfg.GroupPageSize)},
		}

		var page groupMemberPage
		err := c.doJSON(ctx, http.MethodGet, "/rest/api/3/group/member", query, nil, &page)
		if err != nil {
			var te *apperrors.TrackerError
			if errors.As(err, &te) && te.IsNotFound() {
				return nil, fmt.Errorf("%w: %q: %s", apperrors.ErrGroupNotFound, groupName, te.Body)
			}
			return nil, err
		}

		if len(page.Values) == 0 {
			break
		}
		for _, v := range page.Values {
			members = append(members, v.toDomain())
		}

		if page.IsLast || startAt+len(page.Values) >= page.Total {
			break
		}
		startAt += len(page.Values)
	}

	return members, nil
}
