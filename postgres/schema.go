package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func CreateEventsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS events (
		event_id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		organizer_id UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		date TIMESTAMP WITH TIME ZONE NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0)
	);`)
	return err
}

func CreateBookingsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS bookings (
		booking_id UUID PRIMARY KEY,
		event_id UUID NOT NULL,
		user_id UUID NOT NULL,
		tenant_id UUID NOT NULL,
		status VARCHAR(16) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);`)
	if err != nil {
		return err
	}

	// Storage-level backstop for the one-active-booking-per-user-and-event
	// invariant; the serializable create transaction enforces it first.
	_, err = db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_user_event
		ON bookings (user_id, event_id)
		WHERE status IN ('confirmed', 'waitlisted');`)
	return err
}

func CreateAuditLogTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS booking_logs (
		log_id UUID PRIMARY KEY,
		booking_id UUID NOT NULL,
		event_id UUID NOT NULL,
		user_id UUID NOT NULL,
		tenant_id UUID NOT NULL,
		action VARCHAR(32) NOT NULL,
		note TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);`)
	return err
}

func CreateNotificationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS notifications (
		notification_id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		booking_id UUID NOT NULL,
		type VARCHAR(32) NOT NULL,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT false,
		tenant_id UUID NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);`)
	return err
}

func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateEventsTable(ctx, db); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	if err := CreateBookingsTable(ctx, db); err != nil {
		return fmt.Errorf("creating bookings table: %w", err)
	}

	if err := CreateAuditLogTable(ctx, db); err != nil {
		return fmt.Errorf("creating booking logs table: %w", err)
	}

	if err := CreateNotificationsTable(ctx, db); err != nil {
		return fmt.Errorf("creating notifications table: %w", err)
	}

	return nil
}
