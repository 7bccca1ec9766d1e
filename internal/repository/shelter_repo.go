package repository

import (
	"context"

	"gorm.io/gorm"

	"relief-ops/internal/model"
)

// ShelterRepository shelter data access. Availability only moves through
// DecrementAvailable.
type ShelterRepository interface {
	GetByID(ctx context.Context, id string) (*model.Shelter, error)
	// DecrementAvailable takes one place; false when the shelter is full
	DecrementAvailable(ctx context.Context, id string) (bool, error)
}

type shelterRepo struct {
	db *gorm.DB
}

func NewShelterRepo(db *gorm.DB) ShelterRepository {
	return &shelterRepo{db: db}
}

func (r *shelterRepo) GetByID(ctx context.Context, id string) (*model.Shelter, error) {
	var shelter model.Shelter
	err := r.db.WithContext(ctx).
		Where("shelter_id = ?", id).
		First(&shelter).Error
	if err != nil {
		return nil, err
	}
	return &shelter, nil
}

func (r *shelterRepo) DecrementAvailable(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Shelter{}).
		Where("shelter_id = ? AND available > 0", id).
		UpdateColumn("available", gorm.Expr("available - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
