package event

import (
	"time"

	"bookings/entity"

	"github.com/ThreeDotsLabs/watermill"
)

type header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func newHeader(idempotencyKey string) header {
	return header{
		ID:             watermill.NewUUID(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

// BookingCreated is published in the same transaction that inserts the
// booking, carrying the status the capacity decision produced.
type BookingCreated struct {
	Header    header `json:"header"`
	BookingID string `json:"booking_id"`
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	TenantID  string `json:"tenant_id"`
	Status    string `json:"status"`
}

func NewBookingCreated(idempotencyKey string, b entity.Booking) BookingCreated {
	return BookingCreated{
		Header:    newHeader(idempotencyKey),
		BookingID: b.ID,
		EventID:   b.EventID,
		UserID:    b.UserID,
		TenantID:  b.TenantID,
		Status:    b.Status,
	}
}

// BookingCanceled carries the status the booking held before cancellation so
// subscribers can tell whether a confirmed slot was freed.
type BookingCanceled struct {
	Header      header `json:"header"`
	BookingID   string `json:"booking_id"`
	EventID     string `json:"event_id"`
	UserID      string `json:"user_id"`
	TenantID    string `json:"tenant_id"`
	PriorStatus string `json:"prior_status"`
}

func NewBookingCanceled(idempotencyKey string, b entity.Booking, priorStatus string) BookingCanceled {
	return BookingCanceled{
		Header:      newHeader(idempotencyKey),
		BookingID:   b.ID,
		EventID:     b.EventID,
		UserID:      b.UserID,
		TenantID:    b.TenantID,
		PriorStatus: priorStatus,
	}
}

type WaitlistPromoted struct {
	Header    header `json:"header"`
	BookingID string `json:"booking_id"`
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	TenantID  string `json:"tenant_id"`
}

func NewWaitlistPromoted(idempotencyKey string, b entity.Booking) WaitlistPromoted {
	return WaitlistPromoted{
		Header:    newHeader(idempotencyKey),
		BookingID: b.ID,
		EventID:   b.EventID,
		UserID:    b.UserID,
		TenantID:  b.TenantID,
	}
}
