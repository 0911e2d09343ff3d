package entity

import "time"

const (
	ActionCreateRequest       = "create_request"
	ActionAutoWaitlist        = "auto_waitlist"
	ActionAutoConfirm         = "auto_confirm"
	ActionPromoteFromWaitlist = "promote_from_waitlist"
	ActionCancelConfirmed     = "cancel_confirmed"
)

// AuditLogEntry records one committed booking transition. The log is
// append-only: entries are never updated or deleted, and remain queryable in
// creation order for the activity feed.
type AuditLogEntry struct {
	ID        string    `json:"log_id" db:"log_id"`
	BookingID string    `json:"booking_id" db:"booking_id"`
	EventID   string    `json:"event_id" db:"event_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Action    string    `json:"action" db:"action"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
