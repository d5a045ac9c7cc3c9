package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/infra/database/models"
)

// SeedGroups creates the groups the configuration refers to when they do not
// exist yet. Existing groups are left untouched.
func SeedGroups(db *gorm.DB, config domain.Config) error {
	names := append([]string{config.ClaGroup, config.ClaMetaGroup}, config.AdminGroups...)

	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			if name == "" {
				continue
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(&models.Group{Name: name, DisplayName: name}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
