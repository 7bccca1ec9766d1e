package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Repository aggregate entry for every repository
type Repository struct {
	db *gorm.DB

	Case         CaseRepository
	Shelter      ShelterRepository
	User         UserRepository
	Blood        BloodRepository
	Notification NotificationRepository
	Audit        AuditRepository
}

// NewRepository creates the aggregate on db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Case:         NewCaseRepo(db),
		Shelter:      NewShelterRepo(db),
		User:         NewUserRepo(db),
		Blood:        NewBloodRepo(db),
		Notification: NewNotificationRepo(db),
		Audit:        NewAuditRepo(db),
	}
}

// BeginTx starts a transaction. Returns nil without a database
// (repositories assembled by hand, e.g. in-memory mocks).
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns an aggregate whose repositories run on tx; nil tx returns r
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction runs fn inside one transaction: commit when fn returns nil,
// rollback on error or panic.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}

// ReadSnapshot runs fn in a read-only repeatable-read transaction so every
// query sees the same point in time.
func (r *Repository) ReadSnapshot(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}
