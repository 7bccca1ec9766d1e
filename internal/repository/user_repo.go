package repository

import (
	"context"

	"gorm.io/gorm"

	"relief-ops/internal/model"
)

// UserRepository user data access. Soft-deleted users are never returned.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ListByRoles users holding any of roles, newest first
	ListByRoles(ctx context.Context, roles ...string) ([]model.User, error)
}

// userRepo GORM implementation of UserRepository
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a UserRepository
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListByRoles(ctx context.Context, roles ...string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("created_at DESC, user_id DESC").
		Find(&users).Error
	return users, err
}
