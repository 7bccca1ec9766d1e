package dto

import "relief-ops/internal/model"

// ── cases ──

// CreateCaseRequest case intake
type CreateCaseRequest struct {
	VictimName     string   `json:"victim_name"     binding:"required,max=200"`
	ContactEmail   string   `json:"contact_email"   binding:"omitempty,email"`
	Phone          string   `json:"phone"           binding:"omitempty,max=50"`
	Region         string   `json:"region"          binding:"required,max=100"`
	Country        string   `json:"country"         binding:"omitempty,max=100"`
	Latitude       *float64 `json:"latitude"        binding:"omitempty,min=-90,max=90"`
	Longitude      *float64 `json:"longitude"       binding:"omitempty,min=-180,max=180"`
	Description    string   `json:"description"     binding:"omitempty,max=5000"`
	AttachmentPath string   `json:"attachment_path" binding:"omitempty,max=500"`
}

// CaseListRequest case list query
type CaseListRequest struct {
	PaginationRequest
	Status     string `form:"status"      binding:"omitempty,oneof=new acknowledged en_route arrived closed cancelled"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
	Region     string `form:"region"      binding:"omitempty,max=100"`
}

// AssignCaseRequest assign or unassign; a nil volunteer clears the assignee
type AssignCaseRequest struct {
	VolunteerID *string `json:"volunteer_id" binding:"omitempty,uuid"`
	ShelterID   *string `json:"shelter_id"   binding:"omitempty,uuid"`
}

// UpdateCaseStatusRequest status transition
type UpdateCaseStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new acknowledged en_route arrived closed cancelled"`
}

// AssignCaseResponse assignment outcome; ShelterLinked is false when the
// shelter was full and Warnings says so
type AssignCaseResponse struct {
	Case          *model.Case `json:"case"`
	ShelterLinked bool        `json:"shelter_linked"`
	Warnings      []string    `json:"warnings,omitempty"`
}
