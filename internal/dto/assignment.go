package dto

// ── assignment optimizer ──

// SuggestionResponse one proposed case → volunteer pairing
type SuggestionResponse struct {
	CaseID        string   `json:"case_id"`
	CaseVersion   int      `json:"case_version"`
	Region        string   `json:"region"`
	VolunteerID   string   `json:"volunteer_id"`
	VolunteerName string   `json:"volunteer_name"`
	Score         int      `json:"score"`
	Rationale     []string `json:"rationale"`
}

// PlanResponse optimizer output
type PlanResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
	Unmatched   []string             `json:"unmatched_case_ids"`
}

// ApplySuggestion one pairing to apply, pinned to the case version the plan saw
type ApplySuggestion struct {
	CaseID      string `json:"case_id"      binding:"required,uuid"`
	VolunteerID string `json:"volunteer_id" binding:"required,uuid"`
	CaseVersion int    `json:"case_version" binding:"required,min=1"`
}

// ApplyPlanRequest apply a previously computed plan
type ApplyPlanRequest struct {
	Suggestions []ApplySuggestion `json:"suggestions" binding:"required,min=1,dive"`
}

// ApplyRejection a suggestion that could not be applied
type ApplyRejection struct {
	CaseID string `json:"case_id"`
	Reason string `json:"reason"`
}

// ApplyPlanResponse apply outcome
type ApplyPlanResponse struct {
	Applied  []string         `json:"applied_case_ids"`
	Rejected []ApplyRejection `json:"rejected,omitempty"`
}
