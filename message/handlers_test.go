package message

import (
	"context"
	"testing"

	"bookings/booking"
	"bookings/entity"
	"bookings/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEventGetter struct {
	event entity.Event
	err   error
}

func (s stubEventGetter) Get(_ context.Context, _ string) (entity.Event, error) {
	return s.event, s.err
}

type stubPromoter struct {
	promoted *entity.Booking
	err      error

	calls int
}

func (s *stubPromoter) Promote(_ context.Context, _ entity.Event) (*entity.Booking, error) {
	s.calls++
	return s.promoted, s.err
}

type stubAudit struct {
	entries []entity.AuditLogEntry
}

func (s *stubAudit) Add(_ context.Context, entry entity.AuditLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubNotifications struct {
	records []entity.NotificationRecord
}

func (s *stubNotifications) Add(_ context.Context, n entity.NotificationRecord) error {
	s.records = append(s.records, n)
	return nil
}

func meetup() entity.Event {
	return entity.Event{
		ID:       "event-1",
		TenantID: "tenant-1",
		Title:    "Go Meetup",
		Capacity: 2,
	}
}

func TestReconcileWaitlistPromotesWhenConfirmedSlotFreed(t *testing.T) {
	promoter := &stubPromoter{promoted: &entity.Booking{ID: "booking-2", Status: entity.StatusConfirmed}}
	handle := handleReconcileWaitlist(stubEventGetter{event: meetup()}, promoter)

	err := handle(context.Background(), &event.BookingCanceled{
		BookingID:   "booking-1",
		EventID:     "event-1",
		PriorStatus: entity.StatusConfirmed,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, promoter.calls)
}

func TestReconcileWaitlistSkipsWaitlistedCancellation(t *testing.T) {
	promoter := &stubPromoter{}
	handle := handleReconcileWaitlist(stubEventGetter{event: meetup()}, promoter)

	err := handle(context.Background(), &event.BookingCanceled{
		BookingID:   "booking-1",
		EventID:     "event-1",
		PriorStatus: entity.StatusWaitlisted,
	})

	require.NoError(t, err)
	assert.Zero(t, promoter.calls, "canceling a waitlisted booking frees no slot")
}

func TestReconcileWaitlistToleratesFullEvent(t *testing.T) {
	promoter := &stubPromoter{err: booking.E(booking.KindCapacityExceeded, "event is at capacity")}
	handle := handleReconcileWaitlist(stubEventGetter{event: meetup()}, promoter)

	err := handle(context.Background(), &event.BookingCanceled{
		EventID:     "event-1",
		PriorStatus: entity.StatusConfirmed,
	})

	assert.NoError(t, err, "a refilled slot is a terminal outcome, not a retryable failure")
}

func TestReconcileWaitlistToleratesEmptyWaitlist(t *testing.T) {
	handle := handleReconcileWaitlist(stubEventGetter{event: meetup()}, &stubPromoter{})

	err := handle(context.Background(), &event.BookingCanceled{
		EventID:     "event-1",
		PriorStatus: entity.StatusConfirmed,
	})

	assert.NoError(t, err)
}

func TestReconcileWaitlistToleratesMissingEvent(t *testing.T) {
	promoter := &stubPromoter{}
	handle := handleReconcileWaitlist(stubEventGetter{err: booking.E(booking.KindNotFound, "event not found")}, promoter)

	err := handle(context.Background(), &event.BookingCanceled{
		EventID:     "event-gone",
		PriorStatus: entity.StatusConfirmed,
	})

	require.NoError(t, err)
	assert.Zero(t, promoter.calls)
}

func TestReconcileWaitlistRetriesOnStoreFailure(t *testing.T) {
	promoter := &stubPromoter{err: booking.Unavailable(assert.AnError, "reading bookings")}
	handle := handleReconcileWaitlist(stubEventGetter{event: meetup()}, promoter)

	err := handle(context.Background(), &event.BookingCanceled{
		EventID:     "event-1",
		PriorStatus: entity.StatusConfirmed,
	})

	assert.Error(t, err, "transient failures must surface so the subscription retries")
}

func TestAuditBookingCreated(t *testing.T) {
	audit := &stubAudit{}
	handle := handleAuditBookingCreated(stubEventGetter{event: meetup()}, audit)

	err := handle(context.Background(), &event.BookingCreated{
		BookingID: "booking-1",
		EventID:   "event-1",
		UserID:    "user-1",
		TenantID:  "tenant-1",
		Status:    entity.StatusWaitlisted,
	})

	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, entity.ActionAutoWaitlist, audit.entries[0].Action)
	assert.Equal(t, "booking-1", audit.entries[0].BookingID)
	assert.Contains(t, audit.entries[0].Note, "Go Meetup")
}

func TestAuditBookingCanceled(t *testing.T) {
	audit := &stubAudit{}
	handle := handleAuditBookingCanceled(stubEventGetter{event: meetup()}, audit)

	err := handle(context.Background(), &event.BookingCanceled{
		BookingID:   "booking-1",
		EventID:     "event-1",
		UserID:      "user-1",
		TenantID:    "tenant-1",
		PriorStatus: entity.StatusConfirmed,
	})

	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, entity.ActionCancelConfirmed, audit.entries[0].Action)
}

func TestAuditWaitlistPromoted(t *testing.T) {
	audit := &stubAudit{}
	handle := handleAuditWaitlistPromoted(stubEventGetter{event: meetup()}, audit)

	err := handle(context.Background(), &event.WaitlistPromoted{
		BookingID: "booking-2",
		EventID:   "event-1",
		UserID:    "user-2",
		TenantID:  "tenant-1",
	})

	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, entity.ActionPromoteFromWaitlist, audit.entries[0].Action)
}

func TestNotifyBookingCreatedConfirmed(t *testing.T) {
	notifications := &stubNotifications{}
	handle := handleNotifyBookingCreated(stubEventGetter{event: meetup()}, notifications)

	err := handle(context.Background(), &event.BookingCreated{
		BookingID: "booking-1",
		EventID:   "event-1",
		UserID:    "user-1",
		TenantID:  "tenant-1",
		Status:    entity.StatusConfirmed,
	})

	require.NoError(t, err)
	require.Len(t, notifications.records, 1)
	assert.Equal(t, entity.NotificationBookingConfirmed, notifications.records[0].Type)
	assert.Equal(t, "user-1", notifications.records[0].UserID)
}

func TestNotifyBookingCanceled(t *testing.T) {
	notifications := &stubNotifications{}
	handle := handleNotifyBookingCanceled(stubEventGetter{event: meetup()}, notifications)

	err := handle(context.Background(), &event.BookingCanceled{
		BookingID:   "booking-1",
		EventID:     "event-1",
		UserID:      "user-1",
		TenantID:    "tenant-1",
		PriorStatus: entity.StatusConfirmed,
	})

	require.NoError(t, err)
	require.Len(t, notifications.records, 1)
	assert.Equal(t, entity.NotificationBookingCanceled, notifications.records[0].Type)
}

func TestNotifyWaitlistPromoted(t *testing.T) {
	notifications := &stubNotifications{}
	handle := handleNotifyWaitlistPromoted(stubEventGetter{event: meetup()}, notifications)

	err := handle(context.Background(), &event.WaitlistPromoted{
		BookingID: "booking-2",
		EventID:   "event-1",
		UserID:    "user-2",
		TenantID:  "tenant-1",
	})

	require.NoError(t, err)
	require.Len(t, notifications.records, 1)
	assert.Equal(t, entity.NotificationWaitlistPromoted, notifications.records[0].Type)
	assert.Contains(t, notifications.records[0].Message, "Go Meetup")
}
