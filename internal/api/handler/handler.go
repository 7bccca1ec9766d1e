package handler

import "relief-ops/internal/service"

// Handler aggregate of every handler
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Case         *CaseHandler
	Assignment   *AssignmentHandler
	Blood        *BloodHandler
	Forecast     *ForecastHandler
	Export       *ExportHandler
	Notification *NotificationHandler
}

// NewHandler creates the Handler aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Case:         NewCaseHandler(svc.Case),
		Assignment:   NewAssignmentHandler(svc.Assignment),
		Blood:        NewBloodHandler(svc.Blood),
		Forecast:     NewForecastHandler(svc.Forecast),
		Export:       NewExportHandler(svc.Export),
		Notification: NewNotificationHandler(svc.Notification, svc.Audit),
	}
}
