package sideeffect_test

import (
	"testing"

	"bookings/entity"
	"bookings/sideeffect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var booked = entity.Booking{
	ID:       "b1",
	EventID:  "e1",
	UserID:   "u1",
	TenantID: "t1",
}

func TestEmitAutoConfirm(t *testing.T) {
	entry, record := sideeffect.Emit(sideeffect.Transition{
		Action:     entity.ActionAutoConfirm,
		Booking:    booked,
		EventTitle: "Go Meetup",
		NewStatus:  entity.StatusConfirmed,
	})

	assert.Equal(t, entity.ActionAutoConfirm, entry.Action)
	assert.Equal(t, "Booking confirmed for event: Go Meetup", entry.Note)
	assert.Equal(t, "b1", entry.BookingID)
	assert.Equal(t, "t1", entry.TenantID)

	assert.Equal(t, entity.NotificationBookingConfirmed, record.Type)
	assert.Equal(t, "Booking Confirmed!", record.Title)
	assert.Contains(t, record.Message, `"Go Meetup"`)
	assert.False(t, record.Read)
	assert.Equal(t, "u1", record.UserID)
}

func TestEmitAutoWaitlist(t *testing.T) {
	entry, record := sideeffect.Emit(sideeffect.Transition{
		Action:     entity.ActionAutoWaitlist,
		Booking:    booked,
		EventTitle: "Go Meetup",
		NewStatus:  entity.StatusWaitlisted,
	})

	assert.Equal(t, "Booking added to waitlist for event: Go Meetup", entry.Note)
	assert.Equal(t, entity.NotificationWaitlisted, record.Type)
	assert.Equal(t, "Added to Waitlist", record.Title)
	assert.Contains(t, record.Message, "waitlist")
}

func TestEmitPromoteFromWaitlist(t *testing.T) {
	entry, record := sideeffect.Emit(sideeffect.Transition{
		Action:      entity.ActionPromoteFromWaitlist,
		Booking:     booked,
		EventTitle:  "Go Meetup",
		PriorStatus: entity.StatusWaitlisted,
		NewStatus:   entity.StatusConfirmed,
	})

	assert.Equal(t, "Booking status changed from waitlisted to confirmed for event: Go Meetup", entry.Note)
	assert.Equal(t, entity.NotificationWaitlistPromoted, record.Type)
	assert.Equal(t, "Promoted from Waitlist!", record.Title)
	assert.Contains(t, record.Message, "now confirmed")
}

func TestEmitCancelConfirmed(t *testing.T) {
	entry, record := sideeffect.Emit(sideeffect.Transition{
		Action:      entity.ActionCancelConfirmed,
		Booking:     booked,
		EventTitle:  "Go Meetup",
		PriorStatus: entity.StatusConfirmed,
		NewStatus:   entity.StatusCanceled,
	})

	assert.Equal(t, "Booking status changed from confirmed to canceled for event: Go Meetup", entry.Note)
	assert.Equal(t, entity.NotificationBookingCanceled, record.Type)
	assert.Equal(t, "Booking Canceled", record.Title)
	assert.Contains(t, record.Message, "canceled")
}

func TestContentForUnknownType(t *testing.T) {
	title, message := sideeffect.ContentFor("something-new", "Go Meetup")
	require.Equal(t, "Booking Update", title)
	require.Equal(t, "Your booking status has been updated.", message)
}
