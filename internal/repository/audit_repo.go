package repository

import (
	"context"

	"gorm.io/gorm"

	"relief-ops/internal/model"
)

// AuditRepository append-only audit trail
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, entityKind string, offset, limit int) ([]model.AuditLog, int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) List(ctx context.Context, entityKind string, offset, limit int) ([]model.AuditLog, int64, error) {
	var entries []model.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if entityKind != "" {
		db = db.Where("entity_kind = ?", entityKind)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
