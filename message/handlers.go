package message

import (
	"context"
	"fmt"

	"bookings/booking"
	"bookings/entity"
	"bookings/event"
	"bookings/sideeffect"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

type EventGetter interface {
	Get(ctx context.Context, eventID string) (entity.Event, error)
}

type Promoter interface {
	Promote(ctx context.Context, ev entity.Event) (*entity.Booking, error)
}

type AuditLogAppender interface {
	Add(ctx context.Context, entry entity.AuditLogEntry) error
}

type NotificationCreator interface {
	Add(ctx context.Context, n entity.NotificationRecord) error
}

// handleReconcileWaitlist runs after a cancellation commits. The event
// arrives through the outbox, so counts read here can never predate the
// cancellation. Failures end this attempt; the next capacity-freeing
// cancellation re-triggers reconciliation.
func handleReconcileWaitlist(events EventGetter, promoter Promoter) func(ctx context.Context, e *event.BookingCanceled) error {
	return func(ctx context.Context, e *event.BookingCanceled) error {
		if e.PriorStatus != entity.StatusConfirmed {
			// Canceling a waitlisted booking frees no slot.
			return nil
		}

		ev, err := events.Get(ctx, e.EventID)
		if err != nil {
			if booking.IsKind(err, booking.KindNotFound) {
				log.FromContext(ctx).
					WithField("event_id", e.EventID).
					Warn("Event gone, skipping waitlist reconciliation")
				return nil
			}
			return fmt.Errorf("getting event: %w", err)
		}

		promoted, err := promoter.Promote(ctx, ev)
		if err != nil {
			if booking.IsKind(err, booking.KindCapacityExceeded) {
				// Capacity was refilled concurrently; nothing to do.
				log.FromContext(ctx).
					WithField("event_id", e.EventID).
					Info("Event back at capacity, no promotion")
				return nil
			}
			return fmt.Errorf("promoting waitlisted booking: %w", err)
		}

		if promoted == nil {
			log.FromContext(ctx).
				WithField("event_id", e.EventID).
				Info("No waitlisted bookings to promote")
			return nil
		}

		log.FromContext(ctx).
			WithField("booking_id", promoted.ID).
			Info("Promoted booking from waitlist")
		return nil
	}
}

func createdTransition(ev entity.Event, e *event.BookingCreated) sideeffect.Transition {
	action := entity.ActionAutoConfirm
	if e.Status == entity.StatusWaitlisted {
		action = entity.ActionAutoWaitlist
	}

	return sideeffect.Transition{
		Action: action,
		Booking: entity.Booking{
			ID:       e.BookingID,
			EventID:  e.EventID,
			UserID:   e.UserID,
			TenantID: e.TenantID,
		},
		EventTitle: ev.Title,
		NewStatus:  e.Status,
	}
}

func canceledTransition(ev entity.Event, e *event.BookingCanceled) sideeffect.Transition {
	return sideeffect.Transition{
		Action: entity.ActionCancelConfirmed,
		Booking: entity.Booking{
			ID:       e.BookingID,
			EventID:  e.EventID,
			UserID:   e.UserID,
			TenantID: e.TenantID,
		},
		EventTitle:  ev.Title,
		PriorStatus: e.PriorStatus,
		NewStatus:   entity.StatusCanceled,
	}
}

func promotedTransition(ev entity.Event, e *event.WaitlistPromoted) sideeffect.Transition {
	return sideeffect.Transition{
		Action: entity.ActionPromoteFromWaitlist,
		Booking: entity.Booking{
			ID:       e.BookingID,
			EventID:  e.EventID,
			UserID:   e.UserID,
			TenantID: e.TenantID,
		},
		EventTitle:  ev.Title,
		PriorStatus: entity.StatusWaitlisted,
		NewStatus:   entity.StatusConfirmed,
	}
}

func handleAuditBookingCreated(events EventGetter, audit AuditLogAppender) func(ctx context.Context, e *event.BookingCreated) error {
	return func(ctx context.Context, e *event.BookingCreated) error {
		ev, err := events.Get(ctx, e.EventID)
		if err != nil {
			return fmt.Errorf("getting event: %w", err)
		}

		entry, _ := sideeffect.Emit(createdTransition(ev, e))
		return audit.Add(ctx, entry)
	}
}

func handleAuditBookingCanceled(events EventGetter, audit AuditLogAppender) func(ctx context.Context, e *event.BookingCanceled) error {
	return func(ctx context.Context, e *event.BookingCanceled) error {
		ev, err := events.Get(ctx, e.EventID)
		if err != nil {
			return fmt.Errorf("getting event: %w", err)
		}

		entry, _ := sideeffect.Emit(canceledTransition(ev, e))
		return audit.Add(ctx, entry)
	}
}

func handleAuditWaitlistPromoted(events EventGetter, audit AuditLogAppender) func(ctx context.Context, e *event.WaitlistPromoted) error {
	return func(ctx context.Context, e *event.WaitlistPromoted) error {
		ev, err := events.Get(ctx, e.EventID)
		if err != nil {
			return fmt.Errorf("getting event: %w", err)
		}

		entry, _ := sideeffect.Emit(promotedTransition(ev, e))
		return audit.Add(ctx, entry)
	}
}

func handleNotifyBookingCreated(events EventGetter, notifications NotificationCreator) func(ctx context.Context, e *event.BookingCreated) error {
	return func(ctx context.Context, e *event.BookingCreated) error {
		ev, err := events.Get(ctx, e.EventID)
		if err != nil {
			return fmt.Errorf("getting event: %w", err)
		}

		_, record := sideeffect.Emit(createdTransition(ev, e))
		return notifications.Add(ctx, record)
	}
}

func handleNotifyBookingCanceled(events EventGetter, notifications NotificationCreator) func(ctx context.Context, e *event.BookingCanceled) error {
	return func(ctx context.Context, e *event.BookingCanceled) error {
		ev, err := events.Get(ctx, e.EventID)
		if err != nil {
			return fmt.Errorf("getting event: %w", err)
		}

		_, record := sideeffect.Emit(canceledTransition(ev, e))
		return notifications.Add(ctx, record)
	}
}

func handleNotifyWaitlistPromoted(events EventGetter, notifications NotificationCreator) func(ctx context.Context, e *event.WaitlistPromoted) error {
	return func(ctx context.Context, e *event.WaitlistPromoted) error {
		ev, err := events.Get(ctx, e.EventID)
		if err != nil {
			return fmt.Errorf("getting event: %w", err)
		}

		_, record := sideeffect.Emit(promotedTransition(ev, e))
		return notifications.Add(ctx, record)
	}
}
