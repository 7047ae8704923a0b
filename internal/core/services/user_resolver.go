package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
)

// UserResolverConfig controls which members survive resolution.
type UserResolverConfig struct {
	// DomainFilter, when non-empty, keeps only e-mails ending in this domain.
	DomainFilter string
}

// UserResolver implements group-to-people resolution.
type UserResolver struct {
	tracker ports.TrackerClient
	cfg     UserResolverConfig
	logger  *slog.Logger
}

var _ ports.UserResolver = (*UserResolver)(nil)

// NewUserResolver creates a new user resolver.
func NewUserResolver(tracker ports.TrackerClient, cfg UserResolverConfig, logger *slog.Logger) *UserResolver {
	return &UserResolver{
		tracker: tracker,
		cfg:     cfg,
		logger:  logger.With("component", "user_resolver"),
	}
}

// ResolveUsers merges the active human members of every group, drops
// duplicates and members outside the configured domain, and sorts by name.
// Unknown groups are skipped with a warning.
func (s *UserResolver) ResolveUsers(ctx context.Context, groupNames []string) ([]domain.User, error) {
	byID := make(map[string]domain.User)
	var order []string

	for _, name := range groupNames {
		members, err := s.fetchGroup(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if _, seen := byID[m.AccountID]; !seen {
				order = append(order, m.AccountID)
			}
			byID[m.AccountID] = m
		}
	}

	users := make([]domain.User, 0, len(order))
	for _, id := range order {
		u := byID[id]
		if !u.MatchesDomain(s.cfg.DomainFilter) {
			continue
		}
		u.DisplayName = domain.NormalizeDisplayName(u.DisplayName)
		users = append(users, u)
	}
	domain.SortUsers(users)

	s.logger.DebugContext(ctx, "users resolved",
		"groups", len(groupNames),
		"users", len(users),
	)

	return users, nil
}

// ResolveGroup resolves a single group with the same rules as ResolveUsers.
func (s *UserResolver) ResolveGroup(ctx context.Context, groupName string) ([]domain.User, error) {
	return s.ResolveUsers(ctx, []string{groupName})
}

func (s *UserResolver) fetchGroup(ctx context.Context, name string) ([]domain.User, error) {
	members, err := s.tracker.GroupMembers(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrGroupNotFound) {
			s.logger.WarnContext(ctx, "group not found, skipping", "group", name, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("fetch members of group %q: %w", name, err)
	}

	kept := make([]domain.User, 0, len(members))
	for _, m := range members {
		if m.AccountID == "" || !m.IsAssignableHuman() {
			continue
		}
		kept = append(kept, m)
	}
	return kept, nil
}
