package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/infra/database/models"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Get(ctx context.Context, id int64) (domain.Group, error) {
	var group models.Group
	err := conn(ctx, r.db).Where("id = ?", id).Take(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Group{}, domain.NotFoundError{Resource: "group"}
		}
		return domain.Group{}, err
	}
	return toGroup(group), nil
}

func (r *GroupRepository) GetByName(ctx context.Context, name string) (domain.Group, error) {
	var group models.Group
	err := conn(ctx, r.db).Where("name = ?", name).Take(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Group{}, domain.NotFoundError{Resource: "group"}
		}
		return domain.Group{}, err
	}
	return toGroup(group), nil
}

// List reads every group. Callers that walk prerequisite chains must pass
// the ctx of their transaction so the forest matches what they update.
func (r *GroupRepository) List(ctx context.Context) ([]domain.Group, error) {
	var rows []models.Group
	err := conn(ctx, r.db).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, toGroup(row))
	}
	return groups, nil
}

func (r *GroupRepository) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	row := models.Group{
		Name:           group.Name,
		DisplayName:    group.DisplayName,
		OwnerID:        group.OwnerID,
		PrerequisiteID: group.PrerequisiteID,
	}
	err := conn(ctx, r.db).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Group{}, domain.ErrGroupExists
		}
		return domain.Group{}, err
	}
	return toGroup(row), nil
}

func (r *GroupRepository) SetPrerequisite(ctx context.Context, groupID int64, prerequisiteID *int64) error {
	result := conn(ctx, r.db).
		Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("prerequisite_id", prerequisiteID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "group"}
	}
	return nil
}

func toGroup(m models.Group) domain.Group {
	return domain.Group{
		ID:             m.ID,
		Name:           m.Name,
		DisplayName:    m.DisplayName,
		OwnerID:        m.OwnerID,
		PrerequisiteID: m.PrerequisiteID,
		CreatedAt:      m.CreatedAt,
	}
}
