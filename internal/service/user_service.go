package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"relief-ops/internal/dto"
	"relief-ops/internal/model"
	"relief-ops/internal/repository"
)

var ErrUsernameExists = errors.New("username already taken")

// UserService account administration
type UserService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	// ListVolunteers every volunteer with its current open-case workload
	ListVolunteers(ctx context.Context) ([]dto.VolunteerResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates the user service
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Region:       req.Region,
		Country:      req.Country,
		Skills:       req.Skills,
	}
	if callerID != "" {
		user.CreatedBy = &callerID
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── ListVolunteers ──────────────────────

func (s *userService) ListVolunteers(ctx context.Context) ([]dto.VolunteerResponse, error) {
	users, err := s.repo.User.ListByRoles(ctx, model.RoleVolunteer)
	if err != nil {
		s.logger.Error("list volunteers failed", zap.Error(err))
		return nil, err
	}
	workload, err := s.repo.Case.CountOpenByAssignee(ctx)
	if err != nil {
		s.logger.Error("count workload failed", zap.Error(err))
		return nil, err
	}

	out := make([]dto.VolunteerResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.VolunteerResponse{
			UserResponse: toUserResponse(&users[i]),
			Workload:     workload[users[i].UserID],
		})
	}
	return out, nil
}
