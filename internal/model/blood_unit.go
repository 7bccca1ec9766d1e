package model

// BloodUnit blood inventory row, table blood_inventory.
// ExpiresOn keeps the raw YYYY-MM-DD text; rows with an empty or
// unparsable value are tolerated and skipped by expiry scanning.
type BloodUnit struct {
	UnitID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"unit_id"`
	Region    string `gorm:"type:varchar(100);index"                        json:"region"`
	Country   string `gorm:"type:varchar(100)"                              json:"country"`
	BloodType string `gorm:"type:varchar(5)"                                json:"blood_type"`
	Units     int    `gorm:"not null;default:0;check:units >= 0"            json:"units"`
	ExpiresOn string `gorm:"type:varchar(32)"                               json:"expires_on"`
	BaseModel
}

// TableName table name
func (BloodUnit) TableName() string { return "blood_inventory" }
