package handler

import (
	"github.com/gin-gonic/gin"

	"relief-ops/internal/dto"
	"relief-ops/internal/service"
	"relief-ops/pkg/response"
)

// BloodHandler blood inventory endpoints
type BloodHandler struct {
	bloodSvc service.BloodService
}

// NewBloodHandler creates BloodHandler
func NewBloodHandler(bloodSvc service.BloodService) *BloodHandler {
	return &BloodHandler{bloodSvc: bloodSvc}
}

// List all units
// GET /api/v1/blood
func (h *BloodHandler) List(c *gin.Context) {
	units, err := h.bloodSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, units)
}

// Create POST /api/v1/blood
func (h *BloodHandler) Create(c *gin.Context) {
	var req dto.BloodUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	unit, err := h.bloodSvc.Create(c.Request.Context(), &req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, unit)
}

// Update PUT /api/v1/blood/:id
func (h *BloodHandler) Update(c *gin.Context) {
	id, ok := pathID(c, service.ErrBloodUnitNotFound)
	if !ok {
		return
	}

	var req dto.UpdateBloodUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	unit, err := h.bloodSvc.Update(c.Request.Context(), id, &req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, unit)
}

// Delete DELETE /api/v1/blood/:id
func (h *BloodHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, service.ErrBloodUnitNotFound)
	if !ok {
		return
	}

	if err := h.bloodSvc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, nil)
}

// BulkWrite replaces the whole inventory
// PUT /api/v1/blood/bulk
func (h *BloodHandler) BulkWrite(c *gin.Context) {
	var req dto.BulkBloodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.bloodSvc.BulkWrite(c.Request.Context(), &req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}
