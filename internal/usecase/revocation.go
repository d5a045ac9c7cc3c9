package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/nirik/fas/internal/domain"
)

var revocationTracer = otel.Tracer("revocation")

type RevocationUsecase struct {
	persons     PersonRepository
	groups      GroupRepository
	memberships MembershipRepository
	audit       AuditRepository
	tx          TransactionManager
	admin       AdminChecker
	notifier    Notifier
	events      AuditPublisher
	config      domain.Config
}

func NewRevocationUsecase(
	config domain.Config,
	persons PersonRepository,
	groups GroupRepository,
	memberships MembershipRepository,
	audit AuditRepository,
	tx TransactionManager,
	admin AdminChecker,
	notifier Notifier,
	events AuditPublisher,
) *RevocationUsecase {
	return &RevocationUsecase{
		persons:     persons,
		groups:      groups,
		memberships: memberships,
		audit:       audit,
		tx:          tx,
		admin:       admin,
		notifier:    notifier,
		events:      events,
		config:      config,
	}
}

// RejectResult lists the groups whose approval was withdrawn.
type RejectResult struct {
	Outcome domain.Outcome `json:"outcome"`
	Revoked []string       `json:"revoked"`
}

// Reject withdraws the target's agreement: every approved membership in a
// group that depends on the CLA group or the CLA meta group goes back to
// unapproved, all in one transaction.
func (uc *RevocationUsecase) Reject(ctx context.Context, actorID int64, targetUsername string) (RejectResult, error) {
	ctx, span := revocationTracer.Start(ctx, "Revocation.Usecase.Reject")
	defer span.End()
	span.SetAttributes(attribute.String("target", targetUsername))

	result, err := uc.reject(ctx, actorID, targetUsername)
	if err != nil {
		span.RecordError(errors.Wrap(err, "Revocation.Usecase.Reject"))
		if errors.Is(err, domain.ErrGraphCycleDetected) {
			slog.ErrorContext(
				ctx, "malformed group forest, revocation aborted",
				slog.String("error", err.Error()),
				slog.String("target", targetUsername),
				slog.String("module", "revocation"),
			)
		}
		return RejectResult{Outcome: domain.OutcomeOf(err)}, err
	}
	return result, nil
}

func (uc *RevocationUsecase) reject(ctx context.Context, actorID int64, targetUsername string) (RejectResult, error) {
	var (
		isAdmin   bool
		actor     domain.Person
		target    domain.Person
		targetErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.persons.Get(gctx, actorID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return domain.Persistence("get actor", err)
		}
		actor = p
		isAdmin, err = uc.admin.IsAdmin(gctx, p)
		return domain.Persistence("admin check", err)
	})
	g.Go(func() error {
		// reported only after the actor is known to be an admin
		target, targetErr = uc.persons.GetByUsername(gctx, targetUsername)
		return nil
	})
	if err := g.Wait(); err != nil {
		return RejectResult{}, err
	}
	if !isAdmin {
		return RejectResult{}, domain.ErrNotAuthorized
	}
	if targetErr != nil {
		return RejectResult{}, domain.Persistence("get person", targetErr)
	}

	entry := domain.AuditLogEntry{
		AuthorID:    actor.ID,
		TargetID:    &target.ID,
		Description: domain.AuditRevokedCla,
		ChangeTime:  time.Now().UTC(),
	}

	var revoked []string
	err := uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		groups, err := uc.groups.List(ctx)
		if err != nil {
			return domain.Persistence("list groups", err)
		}
		graph := NewGroupGraph(groups)

		held, err := uc.memberships.ListByPerson(ctx, target.ID)
		if err != nil {
			return domain.Persistence("list memberships", err)
		}

		var dependent []int64
		for _, m := range held {
			if !m.Approved() {
				continue
			}
			ok, err := graph.IsClaDependent(m.GroupID, uc.config)
			if err != nil {
				return err
			}
			if ok {
				dependent = append(dependent, m.GroupID)
				revoked = append(revoked, graph.Name(m.GroupID))
			}
		}
		if len(dependent) == 0 {
			return nil
		}

		if _, err := uc.memberships.Unapprove(ctx, target.ID, dependent); err != nil {
			return domain.Persistence("unapprove memberships", err)
		}
		return domain.Persistence("append audit", uc.audit.Append(ctx, entry))
	})
	if err != nil {
		return RejectResult{}, err
	}

	if len(revoked) == 0 {
		return RejectResult{Outcome: domain.Outcome{Kind: domain.OutcomeSuccess}, Revoked: []string{}}, nil
	}

	publishAudit(ctx, uc.events, entry)
	notify(ctx, uc.notifier, uc.revokedNotification(target, entry.ChangeTime))

	return RejectResult{Outcome: domain.Outcome{Kind: domain.OutcomeSuccess}, Revoked: revoked}, nil
}

func (uc *RevocationUsecase) revokedNotification(person domain.Person, at time.Time) domain.Notification {
	editURL := uc.config.BaseURL + "/user/edit/" + person.Username
	body := fmt.Sprintf(`
Hello %s,

We're sorry to bother you but we had to reject your CLA for now because
information you provided has been deemed incorrect.  Common causes of this
are using a name, address/country, or phone number that isn't accurate [1]_.
If you could edit your account [2]_ to fix any of these problems and resubmit
the CLA we would appreciate it.

.. [1]: Why does it matter that we have your real name, address and phone
        number?   It's because the CLA is a legal document and should we ever
        need to contact you about one of your contributions we might need to
        contact you for more information about what's going on.

.. [2]: Edit your account by logging in at this URL:
        %s

If you have questions about what specifically might be the problem with your
account, please contact us at %s.

Thanks!
`, person.HumanName, editURL, uc.config.AccountsEmail)

	return domain.Notification{
		From:    uc.config.AccountsEmail,
		To:      person.Email,
		Subject: "ICLA Revoked",
		Body:    body,
		Fields: map[string]string{
			"username":   person.Username,
			"human_name": person.HumanName,
		},
		At: at,
	}
}
