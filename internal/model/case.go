package model

import "time"

// CaseStatus lifecycle state of a case
type CaseStatus string

const (
	CaseStatusNew          CaseStatus = "new"
	CaseStatusAcknowledged CaseStatus = "acknowledged"
	CaseStatusEnRoute      CaseStatus = "en_route"
	CaseStatusArrived      CaseStatus = "arrived"
	CaseStatusClosed       CaseStatus = "closed"
	CaseStatusCancelled    CaseStatus = "cancelled"
)

// OpenCaseStatuses every status that is neither closed nor cancelled
var OpenCaseStatuses = []CaseStatus{
	CaseStatusNew, CaseStatusAcknowledged, CaseStatusEnRoute, CaseStatusArrived,
}

// IsOpen reports whether the status is non-terminal
func (s CaseStatus) IsOpen() bool {
	return s != CaseStatusClosed && s != CaseStatusCancelled
}

// Valid reports whether s is a known status
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusNew, CaseStatusAcknowledged, CaseStatusEnRoute,
		CaseStatusArrived, CaseStatusClosed, CaseStatusCancelled:
		return true
	}
	return false
}

// Case emergency case, table cases
type Case struct {
	CaseID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"case_id"`
	VictimName     string     `gorm:"type:varchar(200)"                              json:"victim_name"`
	ContactEmail   string     `gorm:"type:varchar(255)"                              json:"contact_email"`
	Phone          string     `gorm:"type:varchar(50)"                               json:"phone"`
	Region         string     `gorm:"type:varchar(100);index"                        json:"region"`
	Country        string     `gorm:"type:varchar(100)"                              json:"country"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Description    string     `gorm:"type:text"                                      json:"description"`
	AttachmentPath string     `gorm:"type:varchar(500)"                              json:"attachment_path,omitempty"`
	Status         CaseStatus `gorm:"type:varchar(20);not null;default:'new';index"  json:"status"`
	AssignedTo     *string    `gorm:"type:uuid;index"                                json:"assigned_to,omitempty"`
	ShelterID      *string    `gorm:"type:uuid"                                      json:"shelter_id,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ArrivedAt      *time.Time `json:"arrived_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	Timeline       Timeline   `gorm:"type:jsonb;not null;default:'[]'"               json:"timeline"`
	VersionedModel

	// associations
	Assignee *User    `gorm:"foreignKey:AssignedTo;references:UserID" json:"assignee,omitempty"`
	Shelter  *Shelter `gorm:"foreignKey:ShelterID;references:ShelterID" json:"shelter,omitempty"`
}

// TableName table name
func (Case) TableName() string { return "cases" }
