package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"relief-ops/internal/dto"
)

var ErrExportGenerateFail = errors.New("generate workbook failed")

// Workbook sheet names
const (
	SheetForecast        = "Forecast"
	SheetRecommendations = "Recommendations"
	SheetExpiryRisk      = "ExpiryRisk"
)

// ExportService spreadsheet exports.
//
// The workbook is returned as a buffer; the handler sets the download
// headers. Sheets: Forecast (one row per forecast record), Recommendations
// (supply/demand match) and ExpiryRisk (at-risk units).
type ExportService interface {
	ExportForecast(ctx context.Context, req *dto.FilterRequest, days *int) (*bytes.Buffer, string, error)
}

type exportService struct {
	forecasts ForecastService
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService creates the export service
func NewExportService(forecasts ForecastService, logger *zap.Logger) ExportService {
	return &exportService{forecasts: forecasts, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportForecast
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportForecast(ctx context.Context, req *dto.FilterRequest, days *int) (*bytes.Buffer, string, error) {
	// ── gather ──
	demand, err := s.forecasts.Demand(ctx, req)
	if err != nil {
		return nil, "", err
	}
	match, err := s.forecasts.Match(ctx, req)
	if err != nil {
		return nil, "", err
	}
	expiry, err := s.forecasts.Expiry(ctx, days)
	if err != nil {
		return nil, "", err
	}

	// ── build ──
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C00000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	forecastRows := make([][]interface{}, 0, len(demand.Records))
	for _, r := range demand.Records {
		forecastRows = append(forecastRows, []interface{}{
			r.Region, r.Country, r.DisasterType, r.Year, r.Confidence, r.Severity,
			r.PredictedUnits, r.RangeMin, r.RangeMax, string(r.AlertLevel),
		})
	}
	matchRows := make([][]interface{}, 0, len(match.Recommendations))
	for _, r := range match.Recommendations {
		matchRows = append(matchRows, []interface{}{
			r.Region, r.DisasterType, r.CurrentSupply, r.PredictedDemand, r.Balance,
			r.CoveragePercent, string(r.Status), r.Action, string(r.Priority),
		})
	}
	expiryRows := make([][]interface{}, 0, len(expiry.Risks))
	for _, r := range expiry.Risks {
		expiryRows = append(expiryRows, []interface{}{
			r.UnitID, r.Region, r.Country, r.BloodType, r.Units, r.ExpiresOn, r.DaysLeft, string(r.Status),
		})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetForecast, []string{"Region", "Country", "Disaster Type", "Year", "Confidence",
			"Severity", "Predicted Units", "Range Min", "Range Max", "Alert Level"}, forecastRows},
		{SheetRecommendations, []string{"Region", "Disaster Type", "Current Supply", "Predicted Demand",
			"Balance", "Coverage %", "Status", "Action", "Priority"}, matchRows},
		{SheetExpiryRisk, []string{"Unit ID", "Region", "Country", "Blood Type", "Units",
			"Expires On", "Days Left", "Status"}, expiryRows},
	}

	for i, sh := range sheets {
		idx, err := f.NewSheet(sh.name)
		if err != nil {
			s.logger.Error("create sheet failed", zap.String("sheet", sh.name), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		for col, h := range sh.headers {
			f.SetCellValue(sh.name, cell(colName(col), 1), h)
		}
		last := cell(colName(len(sh.headers)-1), 1)
		f.SetCellStyle(sh.name, "A1", last, headerStyle)
		f.SetColWidth(sh.name, "A", colName(len(sh.headers)-1), 16)

		for r, row := range sh.rows {
			for col, v := range row {
				f.SetCellValue(sh.name, cell(colName(col), r+2), v)
			}
		}
	}
	// default sheet
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("blood_forecast_%s.xlsx", s.now().UTC().Format("20060102_150405"))
	return buf, filename, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
