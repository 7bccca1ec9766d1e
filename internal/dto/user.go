package dto

// ── users ──

// CreateUserRequest admin creates an account
type CreateUserRequest struct {
	Username  string `json:"username"   binding:"required,min=3,max=100"`
	Password  string `json:"password"   binding:"required,min=8,max=72"`
	Role      string `json:"role"       binding:"required,oneof=admin coordinator volunteer victim"`
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name"  binding:"omitempty,max=100"`
	Email     string `json:"email"      binding:"omitempty,email"`
	Phone     string `json:"phone"      binding:"omitempty,max=50"`
	Region    string `json:"region"     binding:"omitempty,max=100"`
	Country   string `json:"country"    binding:"omitempty,max=100"`
	Skills    string `json:"skills"     binding:"omitempty,max=500"` // comma separated
}
