package model

import "strings"

// Roles
const (
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
	RoleVolunteer   = "volunteer"
	RoleVictim      = "victim"
)

// User account, table users. Volunteers are users with role volunteer.
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'volunteer'"  json:"role"` // admin | coordinator | volunteer | victim
	FirstName    string `gorm:"type:varchar(100)"                              json:"first_name,omitempty"`
	LastName     string `gorm:"type:varchar(100)"                              json:"last_name,omitempty"`
	Email        string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Phone        string `gorm:"type:varchar(50)"                               json:"phone,omitempty"`
	Region       string `gorm:"type:varchar(100)"                              json:"region"`
	Country      string `gorm:"type:varchar(100)"                              json:"country"`
	Skills       string `gorm:"type:varchar(500)"                              json:"skills"` // comma separated
	SoftDeleteModel
}

// TableName table name
func (User) TableName() string { return "users" }

// SkillSet parses the comma separated skills into a lower-case set
func (u *User) SkillSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, s := range strings.Split(u.Skills, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
