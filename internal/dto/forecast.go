package dto

import (
	"time"

	"relief-ops/internal/forecast"
)

// ── forecasting ──

// PredictionInput one disaster prediction; confidence defaults to 50
type PredictionInput struct {
	Region       string   `json:"region"        binding:"required,max=100"`
	Country      string   `json:"country"       binding:"omitempty,max=100"`
	DisasterType string   `json:"disaster_type" binding:"required,max=50"`
	Year         int      `json:"year"          binding:"omitempty,min=1900,max=2200"`
	Confidence   *float64 `json:"confidence"    binding:"omitempty,min=0,max=100"`
}

// UploadPredictionsRequest replaces the current prediction batch
type UploadPredictionsRequest struct {
	Predictions []PredictionInput `json:"predictions" binding:"required,min=1,dive"`
}

// PredictionBatchResponse stored batch metadata
type PredictionBatchResponse struct {
	Count     int       `json:"count"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FilterRequest forecast/match narrowing
type FilterRequest struct {
	DisasterTypes []string `json:"disaster_types" binding:"omitempty,dive,max=50"`
	Region        string   `json:"region"         binding:"omitempty,max=100"`
	Country       string   `json:"country"        binding:"omitempty,max=100"`
	YearFrom      int      `json:"year_from"      binding:"omitempty,min=1900"`
	YearTo        int      `json:"year_to"        binding:"omitempty,min=1900"`
}

// ToFilter converts to the engine's filter value
func (r *FilterRequest) ToFilter() forecast.FilterContext {
	return forecast.FilterContext{
		DisasterTypes: r.DisasterTypes,
		Region:        r.Region,
		Country:       r.Country,
		YearFrom:      r.YearFrom,
		YearTo:        r.YearTo,
	}
}

// ForecastResponse demand forecast of the current batch
type ForecastResponse struct {
	Records []forecast.ForecastRecord `json:"records"`
	Summary forecast.ForecastSummary  `json:"summary"`
	Skipped []string                  `json:"skipped,omitempty"`
}

// MatchResponse supply/demand reconciliation
type MatchResponse struct {
	Recommendations []forecast.MatchRecommendation `json:"recommendations"`
	Summary         forecast.MatchSummary          `json:"summary"`
	TotalSupply     int                            `json:"total_supply"`
	Skipped         []string                       `json:"skipped,omitempty"`
}

// ExpiryRequest expiry scan query
type ExpiryRequest struct {
	Days *int `form:"days" binding:"omitempty,min=0,max=365"`
}

// ExpiryResponse at-risk units
type ExpiryResponse struct {
	DaysThreshold int                    `json:"days_threshold"`
	Risks         []forecast.ExpiryRisk  `json:"risks"`
	Summary       forecast.ExpirySummary `json:"summary"`
	Malformed     int                    `json:"malformed"`
}
