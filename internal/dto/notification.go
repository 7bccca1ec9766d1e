package dto

// ── notifications & audit ──

// NotificationListRequest own notifications query
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// MarkReadResponse mark-all-read outcome
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// AuditListRequest audit log query
type AuditListRequest struct {
	PaginationRequest
	EntityKind string `form:"entity_kind" binding:"omitempty,oneof=case blood_inventory assignment_plan"`
}
