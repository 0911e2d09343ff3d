package booking

import (
	"context"
	"time"

	"bookings/entity"

	"github.com/cenkalti/backoff/v3"
	"github.com/google/uuid"
)

type EventStore interface {
	Get(ctx context.Context, eventID string) (entity.Event, error)
}

type BookingStore interface {
	Get(ctx context.Context, bookingID string) (entity.Booking, error)
	ActiveFor(ctx context.Context, userID, eventID, tenantID string) (*entity.Booking, error)
	Counts(ctx context.Context, eventID, tenantID string) (entity.CapacityCounts, error)
	Create(ctx context.Context, ev entity.Event, b entity.Booking) (entity.Booking, error)
	Cancel(ctx context.Context, bookingID string) (entity.Booking, error)
	Promote(ctx context.Context, ev entity.Event) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, bookingID, status string) (entity.Booking, error)
	ListForUser(ctx context.Context, userID, tenantID, status string) ([]entity.Booking, error)
}

type NotificationStore interface {
	ListForUser(ctx context.Context, userID, tenantID string, unreadOnly bool) ([]entity.NotificationRecord, error)
	MarkRead(ctx context.Context, notificationID, userID, tenantID string) (entity.NotificationRecord, error)
	UnreadCount(ctx context.Context, userID, tenantID string) (int, error)
}

type AuditStore interface {
	ListRecent(ctx context.Context, tenantID string, limit int) ([]entity.AuditLogEntry, error)
	ListForBooking(ctx context.Context, bookingID, tenantID string) ([]entity.AuditLogEntry, error)
}

// Service sequences validation, the status decision, persistence and
// side-effect dispatch for every booking operation. The count-then-write
// sequences themselves run inside the store so they stay atomic; side effects
// travel through the outbox published in the same transaction and are never
// awaited here.
type Service struct {
	events        EventStore
	bookings      BookingStore
	notifications NotificationStore
	audit         AuditStore
}

func NewService(events EventStore, bookings BookingStore, notifications NotificationStore, audit AuditStore) *Service {
	return &Service{
		events:        events,
		bookings:      bookings,
		notifications: notifications,
		audit:         audit,
	}
}

func (s *Service) CreateBooking(ctx context.Context, userID, eventID, tenantID string) (entity.Booking, error) {
	existing, err := s.bookings.ActiveFor(ctx, userID, eventID, tenantID)
	if err != nil {
		return entity.Booking{}, err
	}
	if existing != nil {
		return entity.Booking{}, E(KindDuplicateBooking,
			"you already have an active booking for this event (status: %s)", existing.Status)
	}

	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return entity.Booking{}, err
	}

	if ev.TenantID != tenantID {
		return entity.Booking{}, E(KindTenantMismatch, "event not in your organization")
	}

	if !ev.Date.After(time.Now()) {
		return entity.Booking{}, E(KindPastEvent, "cannot book past events")
	}

	b := entity.Booking{
		ID:       uuid.NewString(),
		EventID:  eventID,
		UserID:   userID,
		TenantID: tenantID,
	}

	return s.bookings.Create(ctx, ev, b)
}

func (s *Service) CancelBooking(ctx context.Context, bookingID, userID, tenantID string) (entity.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return entity.Booking{}, err
	}

	if b.UserID != userID || b.TenantID != tenantID {
		return entity.Booking{}, E(KindAccessDenied, "access denied")
	}

	if b.Status == entity.StatusCanceled {
		return entity.Booking{}, E(KindAlreadyCanceled, "booking is already canceled")
	}

	return s.bookings.Cancel(ctx, bookingID)
}

// PromoteWaitlist is the synchronous, organizer-triggered variant of the
// reconciliation the message handler performs after a cancellation. Calling
// it when no waitlisted booking qualifies is a no-op success.
func (s *Service) PromoteWaitlist(ctx context.Context, eventID string, p entity.Principal) (*entity.Booking, error) {
	if p.Role != entity.RoleOrganizer && p.Role != entity.RoleAdmin {
		return nil, E(KindAccessDenied, "only admins and organizers can promote waitlisted users")
	}

	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if ev.TenantID != p.TenantID {
		return nil, E(KindAccessDenied, "access denied")
	}
	if p.Role == entity.RoleOrganizer && ev.OrganizerID != p.ID {
		return nil, E(KindAccessDenied, "you can only promote waitlisted users for your own events")
	}

	return s.bookings.Promote(ctx, ev)
}

// UpdateBooking is the administrative patch path. Immutable-field checks run
// before the transition is evaluated; a manual move into confirmed goes
// through the capacity-checked path in the store.
func (s *Service) UpdateBooking(ctx context.Context, bookingID string, patch Patch, p entity.Principal) (entity.Booking, error) {
	if p.Role != entity.RoleAdmin {
		return entity.Booking{}, E(KindAccessDenied, "only admins can update bookings")
	}

	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return entity.Booking{}, err
	}

	if b.TenantID != p.TenantID {
		return entity.Booking{}, E(KindAccessDenied, "access denied")
	}

	if err := ValidateUpdate(b, patch); err != nil {
		return entity.Booking{}, err
	}

	if patch.Status == nil || *patch.Status == b.Status {
		return b, nil
	}

	return s.bookings.UpdateStatus(ctx, bookingID, *patch.Status)
}

func (s *Service) ListMyBookings(ctx context.Context, userID, tenantID, status string) ([]entity.Booking, error) {
	return s.bookings.ListForUser(ctx, userID, tenantID, status)
}

func (s *Service) ListMyNotifications(ctx context.Context, userID, tenantID string, unreadOnly bool) ([]entity.NotificationRecord, int, error) {
	notifications, err := s.notifications.ListForUser(ctx, userID, tenantID, unreadOnly)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.notifications.UnreadCount(ctx, userID, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return notifications, unread, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, notificationID, userID, tenantID string) (entity.NotificationRecord, error) {
	return s.notifications.MarkRead(ctx, notificationID, userID, tenantID)
}

// EventStats returns the organizer dashboard view. Counting is read-only, so
// transient store failures are retried with backoff before being surfaced.
func (s *Service) EventStats(ctx context.Context, eventID, tenantID string) (entity.EventStats, error) {
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return entity.EventStats{}, err
	}
	if ev.TenantID != tenantID {
		return entity.EventStats{}, E(KindAccessDenied, "access denied")
	}

	var counts entity.CapacityCounts
	op := func() error {
		var err error
		counts, err = s.bookings.Counts(ctx, eventID, tenantID)
		if err != nil && KindOf(err) != KindUnavailable {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return entity.EventStats{}, err
	}

	return entity.NewEventStats(ev.Capacity, counts), nil
}

// BookingHistory returns a booking's transitions in the order they happened.
// Attendees may only see their own bookings; organizers and admins see any
// booking in their tenant.
func (s *Service) BookingHistory(ctx context.Context, bookingID string, p entity.Principal) ([]entity.AuditLogEntry, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.TenantID != p.TenantID {
		return nil, E(KindAccessDenied, "access denied")
	}
	if p.Role == entity.RoleAttendee && b.UserID != p.ID {
		return nil, E(KindAccessDenied, "access denied")
	}

	return s.audit.ListForBooking(ctx, bookingID, p.TenantID)
}

func (s *Service) RecentActivity(ctx context.Context, tenantID string, limit int) ([]entity.AuditLogEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	return s.audit.ListRecent(ctx, tenantID, limit)
}
