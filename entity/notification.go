package entity

import "time"

const (
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationWaitlisted       = "waitlisted"
	NotificationWaitlistPromoted = "waitlist_promoted"
	NotificationBookingCanceled  = "booking_canceled"
)

// NotificationRecord is the user-visible message derived from a booking
// transition. The only mutation allowed after creation is the owning user
// marking it read.
type NotificationRecord struct {
	ID        string    `json:"notification_id" db:"notification_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	BookingID string    `json:"booking_id" db:"booking_id"`
	Type      string    `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Principal is the authenticated caller as asserted by the identity
// collaborator. Tenant scope always comes from here, never from request
// payloads.
type Principal struct {
	ID       string
	Role     string
	TenantID string
}

const (
	RoleAttendee  = "attendee"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)
