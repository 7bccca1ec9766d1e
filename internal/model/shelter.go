package model

// Shelter shelter capacity ledger, table shelters
type Shelter struct {
	ShelterID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shelter_id"`
	Name      string   `gorm:"type:varchar(200);not null"                     json:"name"`
	Region    string   `gorm:"type:varchar(100)"                              json:"region"`
	Country   string   `gorm:"type:varchar(100)"                              json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Capacity  int      `gorm:"not null;default:0"                             json:"capacity"`
	Available int      `gorm:"not null;default:0;check:available >= 0"        json:"available"`
	Contact   string   `gorm:"type:varchar(200)"                              json:"contact,omitempty"`
	Notes     string   `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel
}

// TableName table name
func (Shelter) TableName() string { return "shelters" }
