package model

import "time"

// Notification in-app message, table notifications
type Notification struct {
	NotificationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Message        string    `gorm:"type:text;not null"                             json:"message"`
	IsRead         bool      `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string   `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // case | blood_unit | assignment_plan
	RelatedID      *string   `gorm:"type:varchar(64)"                               json:"related_id,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName table name
func (Notification) TableName() string { return "notifications" }
