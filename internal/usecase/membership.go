package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nirik/fas/internal/domain"
)

var membershipTracer = otel.Tracer("membership")

// ledger enforces the prerequisite rule on top of the membership repository.
// It must be called with a ctx that carries the enclosing transaction.
type ledger struct {
	groups      GroupRepository
	memberships MembershipRepository
}

func (l ledger) prerequisiteSatisfied(ctx context.Context, personID int64, group domain.Group) error {
	if group.PrerequisiteID == nil {
		return nil
	}
	m, err := l.memberships.Get(ctx, personID, *group.PrerequisiteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrPrerequisiteUnsatisfied
		}
		return domain.Persistence("get prerequisite membership", err)
	}
	if !m.Approved() {
		return domain.ErrPrerequisiteUnsatisfied
	}
	return nil
}

// apply creates an unapproved row. domain.ErrAlreadyApplied is passed through.
func (l ledger) apply(ctx context.Context, personID int64, group domain.Group) error {
	if err := l.prerequisiteSatisfied(ctx, personID, group); err != nil {
		return err
	}
	err := l.memberships.Apply(ctx, personID, group.ID)
	if err != nil && !errors.Is(err, domain.ErrAlreadyApplied) {
		return domain.Persistence("apply", err)
	}
	return err
}

// sponsor approves an existing row. domain.ErrAlreadyApproved is passed through.
func (l ledger) sponsor(ctx context.Context, personID int64, group domain.Group, sponsorID int64) error {
	if err := l.prerequisiteSatisfied(ctx, personID, group); err != nil {
		return err
	}
	err := l.memberships.Sponsor(ctx, personID, group.ID, sponsorID)
	if err != nil && !errors.Is(err, domain.ErrAlreadyApproved) {
		return domain.Persistence("sponsor", err)
	}
	return err
}

// MembershipUsecase exposes apply and sponsor for arbitrary groups.
type MembershipUsecase struct {
	ledger
	persons  PersonRepository
	audit    AuditRepository
	tx       TransactionManager
	admin    AdminChecker
	notifier Notifier
	events   AuditPublisher
	config   domain.Config
}

func NewMembershipUsecase(
	config domain.Config,
	persons PersonRepository,
	groups GroupRepository,
	memberships MembershipRepository,
	audit AuditRepository,
	tx TransactionManager,
	admin AdminChecker,
	notifier Notifier,
	events AuditPublisher,
) *MembershipUsecase {
	return &MembershipUsecase{
		ledger:   ledger{groups: groups, memberships: memberships},
		persons:  persons,
		audit:    audit,
		tx:       tx,
		admin:    admin,
		notifier: notifier,
		events:   events,
		config:   config,
	}
}

// Apply requests membership of groupName for the requester.
func (uc *MembershipUsecase) Apply(ctx context.Context, requesterID int64, groupName string) error {
	ctx, span := membershipTracer.Start(ctx, "Membership.Usecase.Apply")
	defer span.End()
	span.SetAttributes(attribute.String("group", groupName))

	group, err := uc.groups.GetByName(ctx, groupName)
	if err != nil {
		return domain.Persistence("get group", err)
	}

	entry := domain.AuditLogEntry{
		AuthorID:    requesterID,
		Description: fmt.Sprintf("Applied to %s", group.Name),
		ChangeTime:  time.Now().UTC(),
	}

	err = uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := uc.apply(ctx, requesterID, group); err != nil {
			return err
		}
		return domain.Persistence("append audit", uc.audit.Append(ctx, entry))
	})
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyApplied) {
			span.RecordError(errors.Wrap(err, "Membership.Usecase.Apply"))
		}
		return err
	}

	publishAudit(ctx, uc.events, entry)
	return nil
}

// Sponsor approves username's pending membership of groupName. The actor must
// be an administrator or the owner of the group.
func (uc *MembershipUsecase) Sponsor(ctx context.Context, actorID int64, username, groupName string) error {
	ctx, span := membershipTracer.Start(ctx, "Membership.Usecase.Sponsor")
	defer span.End()
	span.SetAttributes(attribute.String("group", groupName), attribute.String("target", username))

	actor, err := uc.persons.Get(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotAuthorized
		}
		return domain.Persistence("get actor", err)
	}

	// a missing group is reported only to administrators
	group, groupErr := uc.groups.GetByName(ctx, groupName)
	if groupErr != nil || group.OwnerID != actor.ID {
		isAdmin, err := uc.admin.IsAdmin(ctx, actor)
		if err != nil {
			return domain.Persistence("admin check", err)
		}
		if !isAdmin {
			return domain.ErrNotAuthorized
		}
	}
	if groupErr != nil {
		return domain.Persistence("get group", groupErr)
	}

	target, err := uc.persons.GetByUsername(ctx, username)
	if err != nil {
		return domain.Persistence("get person", err)
	}

	entry := domain.AuditLogEntry{
		AuthorID:    actor.ID,
		TargetID:    &target.ID,
		Description: fmt.Sprintf("Sponsored %s in %s", target.Username, group.Name),
		ChangeTime:  time.Now().UTC(),
	}

	err = uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := uc.sponsor(ctx, target.ID, group, actor.ID); err != nil {
			return err
		}
		return domain.Persistence("append audit", uc.audit.Append(ctx, entry))
	})
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyApproved) {
			span.RecordError(errors.Wrap(err, "Membership.Usecase.Sponsor"))
		}
		return err
	}

	publishAudit(ctx, uc.events, entry)
	notify(ctx, uc.notifier, domain.Notification{
		From:    uc.config.AccountsEmail,
		To:      target.Email,
		Subject: fmt.Sprintf("Your membership in %s was approved", group.Name),
		Body: fmt.Sprintf(
			"Hello %s,\n\n%s has approved your membership in the '%s' group.\n",
			target.HumanName, actor.Username, group.Name,
		),
		Fields: map[string]string{"username": target.Username, "group": group.Name},
		At:     entry.ChangeTime,
	})
	return nil
}

// notify enqueues n after the state change has committed. Failures are
// logged and dropped.
func notify(ctx context.Context, notifier Notifier, n domain.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Enqueue(ctx, n); err != nil {
		slog.WarnContext(
			ctx, "failed to enqueue notification",
			slog.String("error", err.Error()),
			slog.String("to", n.To),
			slog.String("module", "mail"),
		)
	}
}

func publishAudit(ctx context.Context, events AuditPublisher, entry domain.AuditLogEntry) {
	if events == nil {
		return
	}
	if err := events.PublishAudit(ctx, entry); err != nil {
		slog.WarnContext(
			ctx, "failed to publish audit entry",
			slog.String("error", err.Error()),
			slog.String("module", "audit"),
		)
	}
}
