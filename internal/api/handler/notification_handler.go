package handler

import (
	"github.com/gin-gonic/gin"

	"relief-ops/internal/dto"
	"relief-ops/internal/service"
	"relief-ops/pkg/response"
)

// NotificationHandler notification and audit log endpoints
type NotificationHandler struct {
	notifSvc service.NotificationService
	auditSvc service.AuditService
}

// NewNotificationHandler creates NotificationHandler
func NewNotificationHandler(notifSvc service.NotificationService, auditSvc service.AuditService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc, auditSvc: auditSvc}
}

// List own notifications
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.notifSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// MarkAllRead PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	result, err := h.notifSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}

// AuditLog GET /api/v1/audit
func (h *NotificationHandler) AuditLog(c *gin.Context) {
	var req dto.AuditListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.auditSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
