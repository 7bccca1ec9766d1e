package service

import (
	"go.uber.org/zap"

	"relief-ops/config"
	"relief-ops/internal/repository"
	"relief-ops/pkg/jwt"
)

// Service aggregate of every service
type Service struct {
	Auth         AuthService
	User         UserService
	Case         CaseService
	Assignment   AssignmentService
	Blood        BloodService
	Forecast     ForecastService
	Export       ExportService
	Notification NotificationService
	Audit        AuditService

	// collaborators shared with background jobs
	Notifier Notifier
	Auditor  Auditor
}

// Deps optional infrastructure; nil interfaces disable the feature
type Deps struct {
	Blacklist   TokenBlacklist
	Predictions PredictionStore
	Models      ModelStore
	Feed        PredictionFeed
}

// NewService creates the Service aggregate
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	if deps.Predictions == nil {
		deps.Predictions = NewMemoryPredictionStore()
	}

	notifier := NewNotifier(repo, logger)
	auditor := NewAuditor(repo, logger)
	blood := NewBloodService(repo, notifier, auditor, logger)
	forecasts := NewForecastService(&cfg.Forecast, deps.Predictions, deps.Models, deps.Feed, blood, logger)

	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, deps.Blacklist, logger),
		User:         NewUserService(repo, logger),
		Case:         NewCaseService(repo, notifier, auditor, logger),
		Assignment:   NewAssignmentService(repo, notifier, auditor, logger),
		Blood:        blood,
		Forecast:     forecasts,
		Export:       NewExportService(forecasts, logger),
		Notification: NewNotificationService(repo, logger),
		Audit:        NewAuditService(repo, logger),
		Notifier:     notifier,
		Auditor:      auditor,
	}
}
