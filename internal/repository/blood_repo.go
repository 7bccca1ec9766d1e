package repository

import (
	"context"

	"gorm.io/gorm"

	"relief-ops/internal/model"
)

// BloodRepository blood inventory data access
type BloodRepository interface {
	Create(ctx context.Context, unit *model.BloodUnit) error
	GetByID(ctx context.Context, id string) (*model.BloodUnit, error)
	Update(ctx context.Context, unit *model.BloodUnit) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.BloodUnit, error)
	// ReplaceAll swaps the whole inventory for units
	ReplaceAll(ctx context.Context, units []model.BloodUnit) error
}

type bloodRepo struct {
	db *gorm.DB
}

func NewBloodRepo(db *gorm.DB) BloodRepository {
	return &bloodRepo{db: db}
}

func (r *bloodRepo) Create(ctx context.Context, unit *model.BloodUnit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *bloodRepo) GetByID(ctx context.Context, id string) (*model.BloodUnit, error) {
	var unit model.BloodUnit
	err := r.db.WithContext(ctx).
		Where("unit_id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *bloodRepo) Update(ctx context.Context, unit *model.BloodUnit) error {
	return r.db.WithContext(ctx).
		Model(&model.BloodUnit{}).
		Where("unit_id = ?", unit.UnitID).
		Updates(map[string]interface{}{
			"region":     unit.Region,
			"country":    unit.Country,
			"blood_type": unit.BloodType,
			"units":      unit.Units,
			"expires_on": unit.ExpiresOn,
			"updated_by": unit.UpdatedBy,
		}).Error
}

func (r *bloodRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("unit_id = ?", id).
		Delete(&model.BloodUnit{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bloodRepo) List(ctx context.Context) ([]model.BloodUnit, error) {
	var units []model.BloodUnit
	err := r.db.WithContext(ctx).
		Order("region ASC, expires_on ASC").
		Find(&units).Error
	return units, err
}

func (r *bloodRepo) ReplaceAll(ctx context.Context, units []model.BloodUnit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&model.BloodUnit{}).Error; err != nil {
			return err
		}
		if len(units) == 0 {
			return nil
		}
		return tx.Create(&units).Error
	})
}
