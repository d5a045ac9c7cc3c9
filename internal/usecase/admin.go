package usecase

import (
	"context"
	"errors"

	"github.com/nirik/fas/internal/domain"
)

// GroupAdminChecker treats approved members of the configured admin groups
// as administrators.
type GroupAdminChecker struct {
	groups      GroupRepository
	memberships MembershipRepository
	adminGroups []string
}

func NewGroupAdminChecker(config domain.Config, groups GroupRepository, memberships MembershipRepository) *GroupAdminChecker {
	return &GroupAdminChecker{
		groups:      groups,
		memberships: memberships,
		adminGroups: config.AdminGroups,
	}
}

func (c *GroupAdminChecker) IsAdmin(ctx context.Context, person domain.Person) (bool, error) {
	if !person.Active {
		return false, nil
	}

	held, err := c.memberships.ListByPerson(ctx, person.ID)
	if err != nil {
		return false, err
	}
	approved := make(map[int64]struct{}, len(held))
	for _, m := range held {
		if m.Approved() {
			approved[m.GroupID] = struct{}{}
		}
	}

	for _, name := range c.adminGroups {
		group, err := c.groups.GetByName(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		if _, ok := approved[group.ID]; ok {
			return true, nil
		}
	}
	return false, nil
}

var _ AdminChecker = (*GroupAdminChecker)(nil)
