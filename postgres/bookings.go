package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookings/booking"
	"bookings/entity"
	"bookings/event"
	"bookings/message"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// countTimeout bounds capacity-accounting reads. On timeout the caller gets
// Unavailable, never a default capacity decision.
const countTimeout = 3 * time.Second

// maxTxAttempts bounds retries of serializable transactions that lost a
// conflict. Concurrent creations for the same event conflict by design; the
// loser re-reads counts on retry and lands on the correct status.
const maxTxAttempts = 10

const bookingColumns = "booking_id, event_id, user_id, tenant_id, status, created_at, updated_at"

type BookingRepo struct {
	db     *sqlx.DB
	logger watermill.LoggerAdapter
}

func NewBookingRepo(db *sqlx.DB, logger watermill.LoggerAdapter) BookingRepo {
	return BookingRepo{
		db:     db,
		logger: logger,
	}
}

func (r BookingRepo) Get(ctx context.Context, bookingID string) (entity.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+`
		FROM bookings WHERE booking_id = $1`, bookingID)

	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, booking.E(booking.KindNotFound, "booking not found")
	}
	if err != nil {
		return entity.Booking{}, booking.Unavailable(err, "loading booking")
	}

	return b, nil
}

// ActiveFor returns the user's confirmed or waitlisted booking for the
// event, if any. Canceled bookings never block a new one.
func (r BookingRepo) ActiveFor(ctx context.Context, userID, eventID, tenantID string) (*entity.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1 AND event_id = $2 AND tenant_id = $3
		AND status IN ('confirmed', 'waitlisted')
		LIMIT 1`, userID, eventID, tenantID)

	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, booking.Unavailable(err, "checking for existing booking")
	}

	return &b, nil
}

// Counts groups committed bookings for one (event, tenant) pair by status.
// Rows from other tenants are excluded even when the event id collides.
func (r BookingRepo) Counts(ctx context.Context, eventID, tenantID string) (entity.CapacityCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, countTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*)
		FROM bookings
		WHERE event_id = $1 AND tenant_id = $2
		GROUP BY status`, eventID, tenantID)
	if err != nil {
		return entity.CapacityCounts{}, booking.Unavailable(err, "counting bookings")
	}
	defer rows.Close()

	var counts entity.CapacityCounts
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return entity.CapacityCounts{}, booking.Unavailable(err, "counting bookings")
		}

		switch status {
		case entity.StatusConfirmed:
			counts.Confirmed = count
		case entity.StatusWaitlisted:
			counts.Waitlisted = count
		case entity.StatusCanceled:
			counts.Canceled = count
		}
	}
	if err := rows.Err(); err != nil {
		return entity.CapacityCounts{}, booking.Unavailable(err, "counting bookings")
	}

	return counts, nil
}

// Create decides the initial status and inserts the booking in one
// serializable transaction, so concurrent creations for an event with one
// remaining slot cannot both observe it free.
func (r BookingRepo) Create(ctx context.Context, ev entity.Event, b entity.Booking) (entity.Booking, error) {
	var created entity.Booking
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = r.create(ctx, tx, ev, b)
		return err
	})
	if err != nil {
		return entity.Booking{}, classify(err, "creating booking")
	}

	return created, nil
}

func (r BookingRepo) create(ctx context.Context, tx *sql.Tx, ev entity.Event, b entity.Booking) (entity.Booking, error) {
	var existingStatus string
	err := tx.QueryRowContext(ctx, `SELECT status FROM bookings
		WHERE user_id = $1 AND event_id = $2 AND tenant_id = $3
		AND status IN ('confirmed', 'waitlisted')
		LIMIT 1`, b.UserID, b.EventID, b.TenantID).Scan(&existingStatus)
	if err == nil {
		return entity.Booking{}, booking.E(booking.KindDuplicateBooking,
			"you already have an active booking for this event (status: %s)", existingStatus)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, fmt.Errorf("checking for existing booking: %w", err)
	}

	confirmed, err := countConfirmed(ctx, tx, b.EventID, b.TenantID)
	if err != nil {
		return entity.Booking{}, err
	}

	b.Status = booking.DecideStatus(confirmed, ev.Capacity)

	err = tx.QueryRowContext(ctx, `INSERT INTO bookings
		(booking_id, event_id, user_id, tenant_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		b.ID, b.EventID, b.UserID, b.TenantID, b.Status).Scan(&b.CreatedAt, &b.UpdatedAt)
	if isUniqueViolation(err) {
		return entity.Booking{}, booking.E(booking.KindDuplicateBooking,
			"you already have an active booking for this event")
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("inserting booking: %w", err)
	}

	e := event.NewBookingCreated(uuid.NewString(), b)
	if err := message.PublishInTx(ctx, e, tx, r.logger); err != nil {
		return entity.Booking{}, fmt.Errorf("publishing event in transaction: %w", err)
	}

	return b, nil
}

// Cancel flips the booking to canceled and publishes the prior status in the
// same transaction. The published event is what later drives waitlist
// reconciliation, and it only becomes visible once this commit does.
func (r BookingRepo) Cancel(ctx context.Context, bookingID string) (entity.Booking, error) {
	var canceled entity.Booking
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+`
			FROM bookings WHERE booking_id = $1 FOR UPDATE`, bookingID)

		b, err := scanBooking(row)
		if errors.Is(err, sql.ErrNoRows) {
			return booking.E(booking.KindNotFound, "booking not found")
		}
		if err != nil {
			return fmt.Errorf("loading booking: %w", err)
		}

		if b.Status == entity.StatusCanceled {
			return booking.E(booking.KindAlreadyCanceled, "booking is already canceled")
		}
		if err := booking.ValidateTransition(b.Status, entity.StatusCanceled); err != nil {
			return err
		}

		priorStatus := b.Status
		if err := updateStatus(ctx, tx, &b, entity.StatusCanceled); err != nil {
			return err
		}

		e := event.NewBookingCanceled(uuid.NewString(), b, priorStatus)
		if err := message.PublishInTx(ctx, e, tx, r.logger); err != nil {
			return fmt.Errorf("publishing event in transaction: %w", err)
		}

		canceled = b
		return nil
	})
	if err != nil {
		return entity.Booking{}, classify(err, "canceling booking")
	}

	return canceled, nil
}

// Promote confirms the oldest waitlisted booking for the event if a slot is
// free. It re-reads counts inside its own serializable transaction, so
// concurrent invocations cannot double-promote. Returns nil, nil when no
// waitlisted booking exists.
func (r BookingRepo) Promote(ctx context.Context, ev entity.Event) (*entity.Booking, error) {
	var promoted *entity.Booking
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		promoted = nil

		confirmed, err := countConfirmed(ctx, tx, ev.ID, ev.TenantID)
		if err != nil {
			return err
		}
		if confirmed >= ev.Capacity {
			return booking.E(booking.KindCapacityExceeded,
				"event is at full capacity (%d/%d)", confirmed, ev.Capacity)
		}

		// Ties on created_at break by smallest id so the choice is
		// deterministic.
		row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+`
			FROM bookings
			WHERE event_id = $1 AND tenant_id = $2 AND status = 'waitlisted'
			ORDER BY created_at, booking_id
			LIMIT 1
			FOR UPDATE`, ev.ID, ev.TenantID)

		b, err := scanBooking(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("finding oldest waitlisted booking: %w", err)
		}

		if err := updateStatus(ctx, tx, &b, entity.StatusConfirmed); err != nil {
			return err
		}

		e := event.NewWaitlistPromoted(uuid.NewString(), b)
		if err := message.PublishInTx(ctx, e, tx, r.logger); err != nil {
			return fmt.Errorf("publishing event in transaction: %w", err)
		}

		promoted = &b
		return nil
	})
	if err != nil {
		return nil, classify(err, "promoting waitlisted booking")
	}

	return promoted, nil
}

// UpdateStatus is the manual transition path. Unlike Promote it is not
// capacity-exempt: moving a booking into confirmed fails when the event is
// full.
func (r BookingRepo) UpdateStatus(ctx context.Context, bookingID, status string) (entity.Booking, error) {
	var updated entity.Booking
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+`
			FROM bookings WHERE booking_id = $1 FOR UPDATE`, bookingID)

		b, err := scanBooking(row)
		if errors.Is(err, sql.ErrNoRows) {
			return booking.E(booking.KindNotFound, "booking not found")
		}
		if err != nil {
			return fmt.Errorf("loading booking: %w", err)
		}

		if err := booking.ValidateTransition(b.Status, status); err != nil {
			return err
		}

		if status == entity.StatusConfirmed {
			var capacity int
			err := tx.QueryRowContext(ctx, `SELECT capacity FROM events
				WHERE event_id = $1 AND tenant_id = $2`, b.EventID, b.TenantID).Scan(&capacity)
			if err != nil {
				return fmt.Errorf("loading event capacity: %w", err)
			}

			confirmed, err := countConfirmed(ctx, tx, b.EventID, b.TenantID)
			if err != nil {
				return err
			}
			if err := booking.ValidateConfirm(false, confirmed, capacity); err != nil {
				return err
			}
		}

		priorStatus := b.Status
		if err := updateStatus(ctx, tx, &b, status); err != nil {
			return err
		}

		switch status {
		case entity.StatusConfirmed:
			e := event.NewWaitlistPromoted(uuid.NewString(), b)
			if err := message.PublishInTx(ctx, e, tx, r.logger); err != nil {
				return fmt.Errorf("publishing event in transaction: %w", err)
			}
		case entity.StatusCanceled:
			e := event.NewBookingCanceled(uuid.NewString(), b, priorStatus)
			if err := message.PublishInTx(ctx, e, tx, r.logger); err != nil {
				return fmt.Errorf("publishing event in transaction: %w", err)
			}
		}

		updated = b
		return nil
	})
	if err != nil {
		return entity.Booking{}, classify(err, "updating booking status")
	}

	return updated, nil
}

func (r BookingRepo) ListForUser(ctx context.Context, userID, tenantID, status string) ([]entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND tenant_id = $2`
	args := []any{userID, tenantID}

	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, booking.Unavailable(err, "listing bookings")
	}
	defer rows.Close()

	var out []entity.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, booking.Unavailable(err, "listing bookings")
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, booking.Unavailable(err, "listing bookings")
	}

	return out, nil
}

func countConfirmed(ctx context.Context, tx *sql.Tx, eventID, tenantID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, countTimeout)
	defer cancel()

	var confirmed int
	err := tx.QueryRowContext(ctx, `SELECT count(*) FROM bookings
		WHERE event_id = $1 AND tenant_id = $2 AND status = 'confirmed'`,
		eventID, tenantID).Scan(&confirmed)
	if err != nil {
		return 0, fmt.Errorf("counting confirmed bookings: %w", err)
	}

	return confirmed, nil
}

func updateStatus(ctx context.Context, tx *sql.Tx, b *entity.Booking, status string) error {
	err := tx.QueryRowContext(ctx, `UPDATE bookings
		SET status = $2, updated_at = now()
		WHERE booking_id = $1
		RETURNING updated_at`, b.ID, status).Scan(&b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating booking status: %w", err)
	}

	b.Status = status
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.TenantID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r BookingRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = r.tryTx(ctx, fn)
		if !retryableTxError(err) {
			return err
		}
	}
	return err
}

func (r BookingRepo) tryTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	return tx.Commit()
}

// retryableTxError matches serialization failures and deadlocks, which mean
// the transaction lost a conflict and should simply run again.
func retryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func classify(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *booking.Error
	if errors.As(err, &e) {
		return err
	}
	return booking.Unavailable(err, message)
}
