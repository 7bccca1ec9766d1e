package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── JSONB timeline column ──

// TimelineEntry one append-only action on a case
type TimelineEntry struct {
	Timestamp time.Time `json:"ts"`
	Actor     *string   `json:"actor"`
	Action    string    `json:"action"`
}

// Timeline maps to a PostgreSQL JSONB array and implements the GORM
// Scanner/Valuer interfaces.
type Timeline []TimelineEntry

// Scan decodes the JSONB text returned by PostgreSQL.
func (t *Timeline) Scan(src interface{}) error {
	if src == nil {
		*t = Timeline{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("Timeline.Scan: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*t = Timeline{}
		return nil
	}
	var entries []TimelineEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("Timeline.Scan: %w", err)
	}
	*t = entries
	return nil
}

// Value encodes the timeline as JSON text.
func (t Timeline) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]TimelineEntry(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Append returns the timeline with one more entry
func (t Timeline) Append(at time.Time, actor *string, action string) Timeline {
	return append(t, TimelineEntry{Timestamp: at, Actor: actor, Action: action})
}

// BaseModel audit columns embedded by every business model
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel audit columns with soft delete
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel soft delete plus an optimistic lock version
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
