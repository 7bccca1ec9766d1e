package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relief-ops/internal/model"
	pkgerrors "relief-ops/pkg/errors"
)

// CaseFilter optional list filters
type CaseFilter struct {
	Status     string
	AssignedTo string
	Region     string
}

// CaseRepository case data access
type CaseRepository interface {
	Create(ctx context.Context, c *model.Case) error
	GetByID(ctx context.Context, id string) (*model.Case, error)
	// GetForUpdate reads the case holding a row lock until the transaction ends
	GetForUpdate(ctx context.Context, id string) (*model.Case, error)
	// Update writes mutable columns guarded by the optimistic lock version
	Update(ctx context.Context, c *model.Case) error
	List(ctx context.Context, filter CaseFilter, offset, limit int) ([]model.Case, int64, error)
	// ListOpenUnassigned open cases without an assignee, newest first
	ListOpenUnassigned(ctx context.Context) ([]model.Case, error)
	// CountOpenByAssignee workload: open cases per assigned volunteer
	CountOpenByAssignee(ctx context.Context) (map[string]int, error)
}

type caseRepo struct {
	db *gorm.DB
}

func NewCaseRepo(db *gorm.DB) CaseRepository {
	return &caseRepo{db: db}
}

func (r *caseRepo) Create(ctx context.Context, c *model.Case) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *caseRepo) GetByID(ctx context.Context, id string) (*model.Case, error) {
	var c model.Case
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Shelter").
		Where("case_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepo) GetForUpdate(ctx context.Context, id string) (*model.Case, error) {
	var c model.Case
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("case_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepo) Update(ctx context.Context, c *model.Case) error {
	oldVersion := c.Version
	result := r.db.WithContext(ctx).
		Model(&model.Case{}).
		Where("case_id = ? AND version = ?", c.CaseID, oldVersion).
		Updates(map[string]interface{}{
			"status":          c.Status,
			"assigned_to":     c.AssignedTo,
			"shelter_id":      c.ShelterID,
			"acknowledged_at": c.AcknowledgedAt,
			"arrived_at":      c.ArrivedAt,
			"closed_at":       c.ClosedAt,
			"timeline":        c.Timeline,
			"updated_by":      c.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version = oldVersion + 1
	return nil
}

func (r *caseRepo) List(ctx context.Context, filter CaseFilter, offset, limit int) ([]model.Case, int64, error) {
	var cases []model.Case
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Case{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != "" {
		db = db.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Region != "" {
		db = db.Where("LOWER(region) = LOWER(?)", filter.Region)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&cases).Error; err != nil {
		return nil, 0, err
	}

	return cases, total, nil
}

func (r *caseRepo) ListOpenUnassigned(ctx context.Context) ([]model.Case, error) {
	var cases []model.Case
	err := r.db.WithContext(ctx).
		Where("status IN ? AND assigned_to IS NULL", openStatuses()).
		Order("created_at DESC").
		Find(&cases).Error
	return cases, err
}

func (r *caseRepo) CountOpenByAssignee(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		AssignedTo string
		OpenCount  int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Case{}).
		Select("assigned_to, COUNT(*) AS open_count").
		Where("status IN ? AND assigned_to IS NOT NULL", openStatuses()).
		Group("assigned_to").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	workload := make(map[string]int, len(rows))
	for _, row := range rows {
		workload[row.AssignedTo] = row.OpenCount
	}
	return workload, nil
}

func openStatuses() []string {
	out := make([]string, len(model.OpenCaseStatuses))
	for i, s := range model.OpenCaseStatuses {
		out[i] = string(s)
	}
	return out
}
