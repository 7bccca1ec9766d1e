package handler

import (
	"github.com/gin-gonic/gin"

	"relief-ops/internal/dto"
	"relief-ops/internal/model"
	"relief-ops/internal/service"
	"relief-ops/pkg/response"
)

// CaseHandler case intake and lifecycle endpoints
type CaseHandler struct {
	caseSvc service.CaseService
}

// NewCaseHandler creates CaseHandler
func NewCaseHandler(caseSvc service.CaseService) *CaseHandler {
	return &CaseHandler{caseSvc: caseSvc}
}

// Create case intake
// POST /api/v1/cases
func (h *CaseHandler) Create(c *gin.Context) {
	var req dto.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.caseSvc.Create(c.Request.Context(), &req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, created)
}

// List paged case list
// GET /api/v1/cases
func (h *CaseHandler) List(c *gin.Context) {
	var req dto.CaseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.caseSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get single case
// GET /api/v1/cases/:id
func (h *CaseHandler) Get(c *gin.Context) {
	id, ok := pathID(c, service.ErrCaseNotFound)
	if !ok {
		return
	}

	found, err := h.caseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, found)
}

// Assign sets the volunteer and optional shelter
// PUT /api/v1/cases/:id/assign
func (h *CaseHandler) Assign(c *gin.Context) {
	id, ok := pathID(c, service.ErrCaseNotFound)
	if !ok {
		return
	}

	var req dto.AssignCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.caseSvc.Assign(c.Request.Context(), id, &req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(result.Warnings) > 0 {
		response.OKWithWarnings(c, result, result.Warnings)
		return
	}
	response.OK(c, result)
}

// UpdateStatus lifecycle transition
// PUT /api/v1/cases/:id/status
func (h *CaseHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, service.ErrCaseNotFound)
	if !ok {
		return
	}

	var req dto.UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.caseSvc.Transition(c.Request.Context(), id, model.CaseStatus(req.Status), actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, updated)
}
