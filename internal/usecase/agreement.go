package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nirik/fas/internal/domain"
)

var agreementTracer = otel.Tracer("agreement")

// SubmitInput is a signed agreement as received from the requester.
type SubmitInput struct {
	RequesterID int64
	PersonID    int64
	Profile     domain.Profile
	Confirmed   bool
	Agreed      bool
}

// AgreementView is what the agreement page needs to render, or the reason
// the requester has to edit their profile first.
type AgreementView struct {
	Person   domain.Person `json:"person"`
	Date     time.Time     `json:"date"`
	Ready    bool          `json:"ready"`
	Reason   string        `json:"reason,omitempty"`
	EditPath string        `json:"editPath,omitempty"`
}

type AgreementUsecase struct {
	ledger
	persons   PersonRepository
	audit     AuditRepository
	tx        TransactionManager
	countries CountryCodes
	notifier  Notifier
	events    AuditPublisher
	config    domain.Config
	now       func() time.Time
}

func NewAgreementUsecase(
	config domain.Config,
	persons PersonRepository,
	groups GroupRepository,
	memberships MembershipRepository,
	audit AuditRepository,
	tx TransactionManager,
	countries CountryCodes,
	notifier Notifier,
	events AuditPublisher,
) *AgreementUsecase {
	return &AgreementUsecase{
		ledger:    ledger{groups: groups, memberships: memberships},
		persons:   persons,
		audit:     audit,
		tx:        tx,
		countries: countries,
		notifier:  notifier,
		events:    events,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// View runs the display gate for the requester's agreement page.
func (uc *AgreementUsecase) View(ctx context.Context, requesterID int64) (AgreementView, error) {
	ctx, span := agreementTracer.Start(ctx, "Agreement.Usecase.View")
	defer span.End()

	person, err := uc.persons.Get(ctx, requesterID)
	if err != nil {
		span.RecordError(errors.Wrap(err, "Agreement.Usecase.View: persons.Get failed"))
		return AgreementView{}, domain.Persistence("get person", err)
	}

	view := AgreementView{
		Person: person,
		Date:   uc.now(),
		Ready:  ReadyToSign(person),
	}
	if !view.Ready {
		view.Reason = domain.ReasonProfileNotDisplayed
		view.EditPath = "/user/edit/" + person.Username
	}
	return view, nil
}

// Completed reports whether the person holds an approved membership in the
// CLA group or the CLA meta group.
func (uc *AgreementUsecase) Completed(ctx context.Context, personID int64) (bool, error) {
	held, err := uc.memberships.ListByPerson(ctx, personID)
	if err != nil {
		return false, domain.Persistence("list memberships", err)
	}

	groups := make(map[int64]struct{}, 2)
	for _, name := range []string{uc.config.ClaGroup, uc.config.ClaMetaGroup} {
		if name == "" {
			continue
		}
		group, err := uc.groups.GetByName(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, domain.Persistence("get group", err)
		}
		groups[group.ID] = struct{}{}
	}

	for _, m := range held {
		if _, ok := groups[m.GroupID]; ok && m.Approved() {
			return true, nil
		}
	}
	return false, nil
}

// Submit completes the agreement for input.PersonID. On success the person
// is an approved member of the CLA group, sponsored by themself.
func (uc *AgreementUsecase) Submit(ctx context.Context, input SubmitInput) (domain.Outcome, error) {
	ctx, span := agreementTracer.Start(ctx, "Agreement.Usecase.Submit")
	defer span.End()
	span.SetAttributes(attribute.Int64("person", input.PersonID))

	outcome, err := uc.submit(ctx, input)
	if err != nil {
		span.RecordError(errors.Wrap(err, "Agreement.Usecase.Submit"))
		return domain.OutcomeOf(err), err
	}
	return outcome, nil
}

func (uc *AgreementUsecase) submit(ctx context.Context, input SubmitInput) (domain.Outcome, error) {
	if input.RequesterID != input.PersonID {
		return domain.Outcome{}, domain.ErrNotAuthorized
	}

	person, err := uc.persons.Get(ctx, input.PersonID)
	if err != nil {
		return domain.Outcome{}, domain.Persistence("get person", err)
	}

	group, err := uc.groups.GetByName(ctx, uc.config.ClaGroup)
	if err != nil {
		return domain.Outcome{}, domain.Persistence("get cla group", err)
	}

	done, err := uc.Completed(ctx, person.ID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if done {
		return domain.Outcome{Kind: domain.OutcomeAlreadyCompleted}, nil
	}

	if !input.Agreed {
		return domain.Outcome{}, domain.IncompleteSubmissionError{Reason: domain.ReasonNotAgreed}
	}
	if !input.Confirmed {
		return domain.Outcome{}, domain.IncompleteSubmissionError{Reason: domain.ReasonNotConfirmed}
	}

	// Profile corrections are kept even when the membership change below fails.
	delta := person.Diff(input.Profile)
	if !delta.Empty() {
		if err := uc.persons.UpdateProfile(ctx, person.ID, delta); err != nil {
			return domain.Outcome{}, domain.Persistence("update profile", err)
		}
		person = person.Apply(delta)
	}

	if err := CheckCompletion(person, uc.countries); err != nil {
		return domain.Outcome{}, err
	}

	entry := domain.AuditLogEntry{
		AuthorID:    person.ID,
		Description: domain.AuditCompletedCla,
		ChangeTime:  uc.now(),
	}

	raced := false
	err = uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		err := uc.apply(ctx, person.ID, group)
		if err != nil && !errors.Is(err, domain.ErrAlreadyApplied) {
			return err
		}

		err = uc.sponsor(ctx, person.ID, group, person.ID)
		if errors.Is(err, domain.ErrAlreadyApproved) {
			raced = true
			return nil
		}
		if err != nil {
			return err
		}

		return domain.Persistence("append audit", uc.audit.Append(ctx, entry))
	})
	if err != nil {
		return domain.Outcome{}, domain.Persistence("complete agreement", err)
	}

	if raced {
		slog.InfoContext(
			ctx, "agreement completed by a concurrent submission",
			slog.String("username", person.Username),
			slog.String("module", "agreement"),
		)
		return domain.Outcome{Kind: domain.OutcomeAlreadyCompleted}, nil
	}

	publishAudit(ctx, uc.events, entry)
	notify(ctx, uc.notifier, uc.completedNotification(person, entry.ChangeTime))

	return domain.Outcome{Kind: domain.OutcomeSuccess}, nil
}

func (uc *AgreementUsecase) completedNotification(person domain.Person, at time.Time) domain.Notification {
	revokeURL := strings.TrimSuffix(uc.config.BaseURL, "/") + "/cla/reject/" + person.Username

	var body strings.Builder
	fmt.Fprintf(&body, "User %s has completed an ICLA.\n", person.Username)
	fmt.Fprintf(&body, "Username: %s\n", person.Username)
	fmt.Fprintf(&body, "Email: %s\n", person.Email)
	fmt.Fprintf(&body, "Date: %s\n\n", at.Format(time.ANSIC))
	fmt.Fprintf(&body, "If you need to revoke it, please visit this link:\n    %s\n\n", revokeURL)
	fmt.Fprintf(&body, "=== Contributor ===\n\n")
	fmt.Fprintf(&body, "Name: %s\n", person.HumanName)
	fmt.Fprintf(&body, "Postal address: %s\n", person.PostalAddress)
	fmt.Fprintf(&body, "Country: %s\n", person.CountryCode)
	fmt.Fprintf(&body, "Telephone: %s\n", person.Telephone)

	return domain.Notification{
		From:    uc.config.AccountsEmail,
		To:      uc.config.LegalEmail,
		Subject: "ICLA completed",
		Body:    body.String(),
		Fields: map[string]string{
			"username":       person.Username,
			"email":          person.Email,
			"human_name":     person.HumanName,
			"postal_address": person.PostalAddress,
			"country_code":   person.CountryCode,
			"telephone":      person.Telephone,
			"date":           at.Format(time.RFC3339),
		},
		At: at,
	}
}
