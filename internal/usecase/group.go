package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/nirik/fas/internal/domain"
)

var groupTracer = otel.Tracer("group")

// CreateGroupInput describes a new group. Prerequisite is a group name and
// may be empty.
type CreateGroupInput struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Prerequisite string `json:"prerequisite"`
}

type GroupUsecase struct {
	persons PersonRepository
	groups  GroupRepository
	audit   AuditRepository
	tx      TransactionManager
	admin   AdminChecker
	events  AuditPublisher
}

func NewGroupUsecase(
	persons PersonRepository,
	groups GroupRepository,
	audit AuditRepository,
	tx TransactionManager,
	admin AdminChecker,
	events AuditPublisher,
) *GroupUsecase {
	return &GroupUsecase{
		persons: persons,
		groups:  groups,
		audit:   audit,
		tx:      tx,
		admin:   admin,
		events:  events,
	}
}

func (uc *GroupUsecase) requireAdmin(ctx context.Context, actorID int64) (domain.Person, error) {
	actor, err := uc.persons.Get(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Person{}, domain.ErrNotAuthorized
		}
		return domain.Person{}, domain.Persistence("get actor", err)
	}
	ok, err := uc.admin.IsAdmin(ctx, actor)
	if err != nil {
		return domain.Person{}, domain.Persistence("admin check", err)
	}
	if !ok {
		return domain.Person{}, domain.ErrNotAuthorized
	}
	return actor, nil
}

// Authorize refuses actors without administrative capability.
func (uc *GroupUsecase) Authorize(ctx context.Context, actorID int64) error {
	_, err := uc.requireAdmin(ctx, actorID)
	return err
}

// Create adds a group owned by the acting administrator.
func (uc *GroupUsecase) Create(ctx context.Context, actorID int64, input CreateGroupInput) (domain.Group, error) {
	ctx, span := groupTracer.Start(ctx, "Group.Usecase.Create")
	defer span.End()

	actor, err := uc.requireAdmin(ctx, actorID)
	if err != nil {
		return domain.Group{}, err
	}

	if input.Name == "" {
		return domain.Group{}, domain.ValidationError{Reason: "missing group name"}
	}

	group := domain.Group{
		Name:        input.Name,
		DisplayName: input.DisplayName,
		OwnerID:     actor.ID,
		CreatedAt:   time.Now().UTC(),
	}

	if input.Prerequisite != "" {
		prerequisite, err := uc.groups.GetByName(ctx, input.Prerequisite)
		if err != nil {
			return domain.Group{}, domain.Persistence("get prerequisite", err)
		}
		group.PrerequisiteID = &prerequisite.ID
	}

	entry := domain.AuditLogEntry{
		AuthorID:    actor.ID,
		Description: fmt.Sprintf("Created group %s", group.Name),
		ChangeTime:  group.CreatedAt,
	}

	err = uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := uc.groups.Create(ctx, group)
		if err != nil {
			return domain.Persistence("create group", err)
		}
		group = created
		return domain.Persistence("append audit", uc.audit.Append(ctx, entry))
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "Group.Usecase.Create"))
		return domain.Group{}, err
	}

	publishAudit(ctx, uc.events, entry)
	return group, nil
}

// SetPrerequisite changes or clears the prerequisite of a group. A change
// that would make the forest cyclic is refused with a GraphCycleError.
func (uc *GroupUsecase) SetPrerequisite(ctx context.Context, actorID int64, groupName, prerequisiteName string) error {
	ctx, span := groupTracer.Start(ctx, "Group.Usecase.SetPrerequisite")
	defer span.End()

	actor, err := uc.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}

	group, err := uc.groups.GetByName(ctx, groupName)
	if err != nil {
		return domain.Persistence("get group", err)
	}

	var prerequisiteID *int64
	description := fmt.Sprintf("Cleared prerequisite of %s", group.Name)
	if prerequisiteName != "" {
		prerequisite, err := uc.groups.GetByName(ctx, prerequisiteName)
		if err != nil {
			return domain.Persistence("get prerequisite", err)
		}
		prerequisiteID = &prerequisite.ID
		description = fmt.Sprintf("Set prerequisite of %s to %s", group.Name, prerequisite.Name)
	}

	entry := domain.AuditLogEntry{
		AuthorID:    actor.ID,
		Description: description,
		ChangeTime:  time.Now().UTC(),
	}

	err = uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if prerequisiteID != nil {
			groups, err := uc.groups.List(ctx)
			if err != nil {
				return domain.Persistence("list groups", err)
			}
			if NewGroupGraph(groups).WouldCycle(group.ID, *prerequisiteID) {
				return domain.GraphCycleError{GroupID: group.ID}
			}
		}
		if err := uc.groups.SetPrerequisite(ctx, group.ID, prerequisiteID); err != nil {
			return domain.Persistence("set prerequisite", err)
		}
		return domain.Persistence("append audit", uc.audit.Append(ctx, entry))
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "Group.Usecase.SetPrerequisite"))
		return err
	}

	publishAudit(ctx, uc.events, entry)
	return nil
}
