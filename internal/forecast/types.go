// Package forecast estimates blood demand from predicted disaster events,
// reconciles it against regional inventory and flags units close to expiry.
// Everything here is a pure function of its inputs; persistence and
// delivery live in the service layer.
package forecast

// AlertLevel coarse demand bucket
type AlertLevel string

const (
	AlertLow    AlertLevel = "LOW"
	AlertMedium AlertLevel = "MEDIUM"
	AlertHigh   AlertLevel = "HIGH"
)

// MatchStatus supply/demand classification
type MatchStatus string

const (
	StatusShortage MatchStatus = "SHORTAGE"
	StatusSurplus  MatchStatus = "SURPLUS"
	StatusAdequate MatchStatus = "ADEQUATE"
)

// Priority recommended handling priority
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
	PriorityNone   Priority = "NONE"
)

// ExpiryStatus urgency of an at-risk unit
type ExpiryStatus string

const (
	ExpiryUrgent  ExpiryStatus = "URGENT"
	ExpiryWarning ExpiryStatus = "WARNING"
)

// DisasterPrediction one predicted event. Confidence is a percentage in [0,100].
type DisasterPrediction struct {
	Region       string  `json:"region"`
	Country      string  `json:"country,omitempty"`
	DisasterType string  `json:"disaster_type"`
	Year         int     `json:"year"`
	Confidence   float64 `json:"confidence"`
}

// ForecastRecord expected demand for one prediction
type ForecastRecord struct {
	Region         string     `json:"region"`
	Country        string     `json:"country,omitempty"`
	DisasterType   string     `json:"disaster_type"`
	Year           int        `json:"year"`
	Confidence     float64    `json:"confidence"`
	Severity       int        `json:"severity_estimate"`
	Population     float64    `json:"population_thousands"`
	PredictedUnits int        `json:"predicted_units"`
	RangeMin       int        `json:"range_min"`
	RangeMax       int        `json:"range_max"`
	AlertLevel     AlertLevel `json:"alert_level"`
}

// MatchRecommendation reconciliation of one forecast against regional supply
type MatchRecommendation struct {
	Region          string      `json:"region"`
	DisasterType    string      `json:"disaster_type"`
	CurrentSupply   int         `json:"current_supply"`
	PredictedDemand int         `json:"predicted_demand"`
	Balance         int         `json:"balance"`
	CoveragePercent float64     `json:"coverage_percent"`
	Status          MatchStatus `json:"status"`
	Action          string      `json:"action"`
	Priority        Priority    `json:"priority"`
}

// InventoryUnit read-only view of one inventory row
type InventoryUnit struct {
	UnitID    string `json:"unit_id"`
	Region    string `json:"region"`
	Country   string `json:"country"`
	BloodType string `json:"blood_type"`
	Units     int    `json:"units"`
	ExpiresOn string `json:"expires_on"`
}

// ExpiryRisk an inventory unit expiring inside the threshold window
type ExpiryRisk struct {
	UnitID    string       `json:"unit_id"`
	Region    string       `json:"region"`
	Country   string       `json:"country"`
	BloodType string       `json:"blood_type"`
	Units     int          `json:"units"`
	ExpiresOn string       `json:"expires_on"`
	DaysLeft  int          `json:"days_left"`
	Status    ExpiryStatus `json:"status"`
}

// ForecastSummary headline numbers of a forecast batch
type ForecastSummary struct {
	TotalPredicted int     `json:"total_predicted"`
	HighAlerts     int     `json:"high_alerts"`
	AveragePerItem float64 `json:"average_per_forecast"`
}

// MatchSummary headline numbers of a recommendation list
type MatchSummary struct {
	TotalDemand   int `json:"total_demand"`
	MatchedSupply int `json:"matched_supply"`
	Gap           int `json:"gap"`
	Shortages     int `json:"shortages"`
}

// ExpirySummary counts by urgency
type ExpirySummary struct {
	Urgent  int `json:"urgent"`
	Warning int `json:"warning"`
}
