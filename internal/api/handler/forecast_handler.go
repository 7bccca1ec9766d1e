package handler

import (
	"github.com/gin-gonic/gin"

	"relief-ops/internal/dto"
	"relief-ops/internal/service"
	"relief-ops/pkg/response"
)

// ForecastHandler forecasting endpoints
type ForecastHandler struct {
	forecastSvc service.ForecastService
}

// NewForecastHandler creates ForecastHandler
func NewForecastHandler(forecastSvc service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastSvc: forecastSvc}
}

// SetPredictions replaces the prediction batch from JSON
// POST /api/v1/forecast/predictions
func (h *ForecastHandler) SetPredictions(c *gin.Context) {
	var req dto.UploadPredictionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	batch, err := h.forecastSvc.SetPredictions(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, batch)
}

// ImportPredictions replaces the prediction batch from an xlsx upload
// POST /api/v1/forecast/predictions/import (multipart field "file")
func (h *ForecastHandler) ImportPredictions(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "cannot read upload")
		return
	}
	defer f.Close()

	batch, err := h.forecastSvc.ImportPredictions(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, batch)
}

// Refresh pulls the configured prediction feed
// POST /api/v1/forecast/predictions/refresh
func (h *ForecastHandler) Refresh(c *gin.Context) {
	batch, err := h.forecastSvc.RefreshFromFeed(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, batch)
}

// Demand POST /api/v1/forecast/demand
func (h *ForecastHandler) Demand(c *gin.Context) {
	var req dto.FilterRequest
	if !bindFilter(c, &req) {
		return
	}
	result, err := h.forecastSvc.Demand(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}

// Match POST /api/v1/forecast/match
func (h *ForecastHandler) Match(c *gin.Context) {
	var req dto.FilterRequest
	if !bindFilter(c, &req) {
		return
	}
	result, err := h.forecastSvc.Match(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}

// Expiry GET /api/v1/forecast/expiry?days=N
func (h *ForecastHandler) Expiry(c *gin.Context) {
	var req dto.ExpiryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.forecastSvc.Expiry(c.Request.Context(), req.Days)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}

// bindFilter an empty body means no filter
func bindFilter(c *gin.Context, req *dto.FilterRequest) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		bindError(c, err)
		return false
	}
	return true
}
