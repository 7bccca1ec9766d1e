package model

import "time"

// AuditLog append-only audit trail, table audit_logs
type AuditLog struct {
	AuditID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_id"`
	ActorID    *string   `gorm:"type:uuid"                                      json:"actor_id,omitempty"`
	EntityKind string    `gorm:"type:varchar(50);not null"                      json:"entity_kind"` // case | blood_inventory
	Payload    string    `gorm:"type:jsonb;not null"                            json:"payload"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName table name
func (AuditLog) TableName() string { return "audit_logs" }
