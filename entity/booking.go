package entity

import "time"

const (
	StatusConfirmed  = "confirmed"
	StatusWaitlisted = "waitlisted"
	StatusCanceled   = "canceled"
)

// Booking is one user's claim on one event's capacity. A canceled booking is
// kept as history and never deleted; only Status and UpdatedAt change after
// creation.
type Booking struct {
	ID        string    `json:"booking_id" db:"booking_id"`
	EventID   string    `json:"event_id" db:"event_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Active reports whether the booking counts toward the one-active-booking-
// per-user-and-event rule.
func (b Booking) Active() bool {
	return b.Status == StatusConfirmed || b.Status == StatusWaitlisted
}
