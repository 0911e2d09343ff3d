// Package sideeffect maps committed booking transitions to the derived
// records they produce. Emit is a pure function: persistence and delivery
// belong to the message handlers, and their failure never reaches back to
// the transition that triggered them.
package sideeffect

import (
	"fmt"

	"bookings/entity"
)

// Transition describes one committed booking state change.
type Transition struct {
	Action      string
	Booking     entity.Booking
	EventTitle  string
	PriorStatus string
	NewStatus   string
}

// Emit derives the audit-log entry and user notification for a transition.
// IDs and timestamps are assigned by the store on insert.
func Emit(t Transition) (entity.AuditLogEntry, entity.NotificationRecord) {
	entry := entity.AuditLogEntry{
		BookingID: t.Booking.ID,
		EventID:   t.Booking.EventID,
		UserID:    t.Booking.UserID,
		TenantID:  t.Booking.TenantID,
		Action:    t.Action,
		Note:      noteFor(t),
	}

	notificationType := notificationTypeFor(t.Action)
	title, message := ContentFor(notificationType, t.EventTitle)

	record := entity.NotificationRecord{
		UserID:    t.Booking.UserID,
		BookingID: t.Booking.ID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		Read:      false,
		TenantID:  t.Booking.TenantID,
	}

	return entry, record
}

func notificationTypeFor(action string) string {
	switch action {
	case entity.ActionAutoConfirm:
		return entity.NotificationBookingConfirmed
	case entity.ActionAutoWaitlist:
		return entity.NotificationWaitlisted
	case entity.ActionPromoteFromWaitlist:
		return entity.NotificationWaitlistPromoted
	case entity.ActionCancelConfirmed:
		return entity.NotificationBookingCanceled
	default:
		return entity.NotificationBookingConfirmed
	}
}

func noteFor(t Transition) string {
	switch t.Action {
	case entity.ActionAutoConfirm:
		return fmt.Sprintf("Booking confirmed for event: %s", t.EventTitle)
	case entity.ActionAutoWaitlist:
		return fmt.Sprintf("Booking added to waitlist for event: %s", t.EventTitle)
	default:
		return fmt.Sprintf("Booking status changed from %s to %s for event: %s",
			t.PriorStatus, t.NewStatus, t.EventTitle)
	}
}

// ContentFor returns the fixed title and message template for a notification
// type.
func ContentFor(notificationType, eventTitle string) (title, message string) {
	switch notificationType {
	case entity.NotificationBookingConfirmed:
		return "Booking Confirmed!",
			fmt.Sprintf("Great news! Your booking for %q has been confirmed. We look forward to seeing you there!", eventTitle)
	case entity.NotificationWaitlisted:
		return "Added to Waitlist",
			fmt.Sprintf("You've been added to the waitlist for %q. We'll notify you immediately if a spot opens up.", eventTitle)
	case entity.NotificationWaitlistPromoted:
		return "Promoted from Waitlist!",
			fmt.Sprintf("Excellent news! A spot opened up and your booking for %q is now confirmed. See you there!", eventTitle)
	case entity.NotificationBookingCanceled:
		return "Booking Canceled",
			fmt.Sprintf("Your booking for %q has been canceled. If this was a mistake, please contact the organizer.", eventTitle)
	default:
		return "Booking Update", "Your booking status has been updated."
	}
}
