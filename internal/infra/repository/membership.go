package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/infra/database/models"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Get(ctx context.Context, personID, groupID int64) (domain.Membership, error) {
	var role models.Role
	err := conn(ctx, r.db).
		Where("person_id = ? AND group_id = ?", personID, groupID).
		Take(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Membership{}, domain.NotFoundError{Resource: "membership"}
		}
		return domain.Membership{}, err
	}
	return toMembership(role), nil
}

func (r *MembershipRepository) ListByPerson(ctx context.Context, personID int64) ([]domain.Membership, error) {
	var roles []models.Role
	err := conn(ctx, r.db).
		Where("person_id = ?", personID).
		Order("group_id ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	memberships := make([]domain.Membership, 0, len(roles))
	for _, role := range roles {
		memberships = append(memberships, toMembership(role))
	}
	return memberships, nil
}

// Apply inserts an unapproved role. An existing row is left untouched and
// reported as domain.ErrAlreadyApplied.
func (r *MembershipRepository) Apply(ctx context.Context, personID, groupID int64) error {
	role := models.Role{
		PersonID:     personID,
		GroupID:      groupID,
		RoleStatus:   string(domain.StatusUnapproved),
		CreationTime: time.Now().UTC(),
	}
	result := conn(ctx, r.db).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "person_id"}, {Name: "group_id"}},
		DoNothing: true,
	}).Create(&role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAlreadyApplied
	}
	return nil
}

// Sponsor flips an unapproved role to approved. The conditional update makes
// the second of two concurrent sponsors observe domain.ErrAlreadyApproved.
func (r *MembershipRepository) Sponsor(ctx context.Context, personID, groupID, sponsorID int64) error {
	db := conn(ctx, r.db)
	now := time.Now().UTC()

	result := db.Model(&models.Role{}).
		Where("person_id = ? AND group_id = ? AND role_status = ?", personID, groupID, string(domain.StatusUnapproved)).
		Updates(map[string]any{
			"role_status":   string(domain.StatusApproved),
			"sponsor_id":    sponsorID,
			"approval_time": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var role models.Role
	err := db.Where("person_id = ? AND group_id = ?", personID, groupID).Take(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "membership"}
		}
		return err
	}
	return domain.ErrAlreadyApproved
}

// Unapprove returns the approved roles among groupIDs to unapproved and
// reports how many rows changed.
func (r *MembershipRepository) Unapprove(ctx context.Context, personID int64, groupIDs []int64) (int64, error) {
	if len(groupIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Model(&models.Role{}).
		Where("person_id = ? AND group_id IN ? AND role_status = ?", personID, groupIDs, string(domain.StatusApproved)).
		Updates(map[string]any{
			"role_status":   string(domain.StatusUnapproved),
			"approval_time": nil,
		})
	return result.RowsAffected, result.Error
}

func toMembership(m models.Role) domain.Membership {
	return domain.Membership{
		PersonID:     m.PersonID,
		GroupID:      m.GroupID,
		Status:       domain.MembershipStatus(m.RoleStatus),
		SponsorID:    m.SponsorID,
		CreatedAt:    m.CreationTime,
		ApprovalTime: m.ApprovalTime,
	}
}
