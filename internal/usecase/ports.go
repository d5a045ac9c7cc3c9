package usecase

import (
	"context"

	"github.com/nirik/fas/internal/domain"
)

// PersonRepository reads and updates account holders.
type PersonRepository interface {
	Get(ctx context.Context, id int64) (domain.Person, error)
	GetByUsername(ctx context.Context, username string) (domain.Person, error)
	UpdateProfile(ctx context.Context, id int64, delta domain.ProfileDelta) error
}

// GroupRepository defines persistence/lookup for groups.
type GroupRepository interface {
	Get(ctx context.Context, id int64) (domain.Group, error)
	GetByName(ctx context.Context, name string) (domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
	Create(ctx context.Context, group domain.Group) (domain.Group, error)
	SetPrerequisite(ctx context.Context, groupID int64, prerequisiteID *int64) error
}

// MembershipRepository is the ledger of (person, group) roles.
//
// Apply returns domain.ErrAlreadyApplied when a row exists. Sponsor returns
// domain.ErrAlreadyApproved when the row is already approved and
// domain.ErrNotFound when the person never applied. Neither condition may
// abort an enclosing transaction.
type MembershipRepository interface {
	Get(ctx context.Context, personID, groupID int64) (domain.Membership, error)
	ListByPerson(ctx context.Context, personID int64) ([]domain.Membership, error)
	Apply(ctx context.Context, personID, groupID int64) error
	Sponsor(ctx context.Context, personID, groupID, sponsorID int64) error
	Unapprove(ctx context.Context, personID int64, groupIDs []int64) (int64, error)
}

// AuditRepository is write only.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditLogEntry) error
}

// TransactionManager runs fn in a transaction carried by ctx.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier hands a message to the mail collaborator without waiting for delivery.
type Notifier interface {
	Enqueue(ctx context.Context, n domain.Notification) error
}

// AuditPublisher fans committed audit entries out to listeners.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, entry domain.AuditLogEntry) error
}

// AdminChecker answers whether a person holds administrative capability.
type AdminChecker interface {
	IsAdmin(ctx context.Context, person domain.Person) (bool, error)
}

// CountryCodes is the reference set of valid two-letter country codes.
type CountryCodes interface {
	Contains(code string) bool
}
