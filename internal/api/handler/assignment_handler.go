package handler

import (
	"github.com/gin-gonic/gin"

	"relief-ops/internal/dto"
	"relief-ops/internal/service"
	"relief-ops/pkg/response"
)

// AssignmentHandler assignment optimizer endpoints
type AssignmentHandler struct {
	assignSvc service.AssignmentService
}

// NewAssignmentHandler creates AssignmentHandler
func NewAssignmentHandler(assignSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignSvc: assignSvc}
}

// Plan proposes assignments without writing anything
// GET /api/v1/assignments/plan
func (h *AssignmentHandler) Plan(c *gin.Context) {
	plan, err := h.assignSvc.Plan(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, plan)
}

// Apply writes a previously computed plan; stale entries are rejected
// POST /api/v1/assignments/apply
func (h *AssignmentHandler) Apply(c *gin.Context) {
	var req dto.ApplyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.assignSvc.Apply(c.Request.Context(), &req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}
