package repository

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nirik/fas/internal/infra/database"
	"github.com/nirik/fas/internal/infra/database/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "fas.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createPerson(t *testing.T, db *gorm.DB, username string) models.Person {
	t.Helper()
	person := models.Person{
		Username: username,
		Email:    username + "@example.org",
		Status:   personStatusActive,
	}
	require.NoError(t, db.Create(&person).Error)
	return person
}

func createGroup(t *testing.T, db *gorm.DB, name string, prerequisite *int64) models.Group {
	t.Helper()
	group := models.Group{
		Name:           name,
		DisplayName:    name,
		PrerequisiteID: prerequisite,
	}
	require.NoError(t, db.Create(&group).Error)
	return group
}
