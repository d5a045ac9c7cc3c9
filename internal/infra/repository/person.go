package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/infra/database/models"
)

const personStatusActive = "active"

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Get(ctx context.Context, id int64) (domain.Person, error) {
	var person models.Person
	err := conn(ctx, r.db).Where("id = ?", id).Take(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Person{}, domain.NotFoundError{Resource: "person"}
		}
		return domain.Person{}, err
	}
	return toPerson(person), nil
}

func (r *PersonRepository) GetByUsername(ctx context.Context, username string) (domain.Person, error) {
	var person models.Person
	err := conn(ctx, r.db).Where("username = ?", username).Take(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Person{}, domain.NotFoundError{Resource: "person"}
		}
		return domain.Person{}, err
	}
	return toPerson(person), nil
}

// UpdateProfile writes only the fields set in delta.
func (r *PersonRepository) UpdateProfile(ctx context.Context, id int64, delta domain.ProfileDelta) error {
	updates := map[string]any{}
	if delta.HumanName != nil {
		updates["human_name"] = *delta.HumanName
	}
	if delta.Telephone != nil {
		updates["telephone"] = *delta.Telephone
	}
	if delta.PostalAddress != nil {
		updates["postal_address"] = *delta.PostalAddress
	}
	if delta.CountryCode != nil {
		updates["country_code"] = *delta.CountryCode
	}
	if len(updates) == 0 {
		return nil
	}

	result := conn(ctx, r.db).Model(&models.Person{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "person"}
	}
	return nil
}

func toPerson(m models.Person) domain.Person {
	return domain.Person{
		ID:            m.ID,
		Username:      m.Username,
		HumanName:     m.HumanName,
		Email:         m.Email,
		Telephone:     m.Telephone,
		PostalAddress: m.PostalAddress,
		CountryCode:   m.CountryCode,
		Active:        m.Status == personStatusActive,
		CreatedAt:     m.CreatedAt,
	}
}
