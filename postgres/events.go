package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bookings/booking"
	"bookings/entity"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) EventRepo {
	return EventRepo{
		db: db,
	}
}

func (r EventRepo) Add(ctx context.Context, ev entity.Event) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO events
		(event_id, tenant_id, organizer_id, title, date, capacity)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		ev.ID, ev.TenantID, ev.OrganizerID, ev.Title, ev.Date, ev.Capacity)
	if err != nil {
		return booking.Unavailable(err, "adding event")
	}
	return nil
}

func (r EventRepo) Get(ctx context.Context, eventID string) (entity.Event, error) {
	var ev entity.Event
	err := r.db.QueryRowContext(ctx, `SELECT event_id, tenant_id, organizer_id, title, date, capacity
		FROM events WHERE event_id = $1`, eventID).
		Scan(&ev.ID, &ev.TenantID, &ev.OrganizerID, &ev.Title, &ev.Date, &ev.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, booking.E(booking.KindNotFound, "event not found")
	}
	if err != nil {
		return entity.Event{}, booking.Unavailable(err, "loading event")
	}

	return ev, nil
}
