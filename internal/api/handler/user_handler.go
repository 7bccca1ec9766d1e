package handler

import (
	"github.com/gin-gonic/gin"

	"relief-ops/internal/dto"
	"relief-ops/internal/service"
	"relief-ops/pkg/response"
)

// UserHandler user management endpoints
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler creates UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Create admin creates an account
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userSvc.CreateUser(c.Request.Context(), &req, callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, user)
}

// ListVolunteers volunteers with workload
// GET /api/v1/users/volunteers
func (h *UserHandler) ListVolunteers(c *gin.Context) {
	list, err := h.userSvc.ListVolunteers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, list)
}
