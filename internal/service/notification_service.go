package service

import (
	"context"

	"go.uber.org/zap"

	"relief-ops/internal/dto"
	"relief-ops/internal/model"
	"relief-ops/internal/repository"
)

// NotificationService the caller's own notifications
type NotificationService interface {
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userID string) (*dto.MarkReadResponse, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService creates the notification service
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]model.Notification, int64, error) {
	items, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (*dto.MarkReadResponse, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("mark notifications read failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.MarkReadResponse{Updated: n}, nil
}

// AuditService read access to the audit trail
type AuditService interface {
	List(ctx context.Context, req *dto.AuditListRequest) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService creates the audit reader
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) List(ctx context.Context, req *dto.AuditListRequest) ([]model.AuditLog, int64, error) {
	items, total, err := s.repo.Audit.List(ctx, req.EntityKind, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list audit log failed", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}
