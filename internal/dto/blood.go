package dto

// ── blood inventory ──

// BloodUnitRequest create a unit, also used as a bulk row
type BloodUnitRequest struct {
	Region    string `json:"region"     binding:"required,max=100"`
	Country   string `json:"country"    binding:"omitempty,max=100"`
	BloodType string `json:"blood_type" binding:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Units     int    `json:"units"      binding:"min=0"`
	ExpiresOn string `json:"expires_on" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateBloodUnitRequest partial update
type UpdateBloodUnitRequest struct {
	Region    *string `json:"region"     binding:"omitempty,max=100"`
	Country   *string `json:"country"    binding:"omitempty,max=100"`
	BloodType *string `json:"blood_type" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Units     *int    `json:"units"      binding:"omitempty,min=0"`
	ExpiresOn *string `json:"expires_on" binding:"omitempty,datetime=2006-01-02"`
}

// BulkBloodRequest replaces the whole inventory
type BulkBloodRequest struct {
	Units []BloodUnitRequest `json:"units" binding:"dive"`
}

// BulkBloodResponse bulk write outcome
type BulkBloodResponse struct {
	Rows int `json:"rows"`
}
