package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/infra/database/models"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	return conn(ctx, r.db).Create(&models.Log{
		AuthorID:    entry.AuthorID,
		TargetID:    entry.TargetID,
		Description: entry.Description,
		ChangeTime:  entry.ChangeTime,
	}).Error
}
