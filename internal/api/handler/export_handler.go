package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"relief-ops/internal/dto"
	"relief-ops/internal/service"
)

// ExportHandler workbook export endpoints
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportForecast forecast, recommendations and expiry risk as xlsx
// POST /api/v1/forecast/export?days=N
func (h *ExportHandler) ExportForecast(c *gin.Context) {
	var q dto.ExpiryRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	var req dto.FilterRequest
	if !bindFilter(c, &req) {
		return
	}

	buf, filename, err := h.exportSvc.ExportForecast(c.Request.Context(), &req, q.Days)
	if err != nil {
		writeError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
