package postgres

import (
	"context"

	"bookings/booking"
	"bookings/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// AuditLogRepo is an append-only ledger of booking transitions. Entries are
// only ever inserted and read back in creation order.
type AuditLogRepo struct {
	db *sqlx.DB
}

func NewAuditLogRepo(db *sqlx.DB) AuditLogRepo {
	return AuditLogRepo{
		db: db,
	}
}

func (r AuditLogRepo) Add(ctx context.Context, entry entity.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO booking_logs
		(log_id, booking_id, event_id, user_id, tenant_id, action, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		entry.ID, entry.BookingID, entry.EventID, entry.UserID, entry.TenantID, entry.Action, entry.Note)
	if err != nil {
		return booking.Unavailable(err, "adding audit log entry")
	}
	return nil
}

// ListRecent returns the newest entries for a tenant's activity feed.
func (r AuditLogRepo) ListRecent(ctx context.Context, tenantID string, limit int) ([]entity.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT log_id, booking_id, event_id, user_id, tenant_id, action, note, created_at
		FROM booking_logs
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, booking.Unavailable(err, "listing audit log entries")
	}
	defer rows.Close()

	var out []entity.AuditLogEntry
	for rows.Next() {
		var e entity.AuditLogEntry
		err := rows.Scan(&e.ID, &e.BookingID, &e.EventID, &e.UserID, &e.TenantID, &e.Action, &e.Note, &e.CreatedAt)
		if err != nil {
			return nil, booking.Unavailable(err, "listing audit log entries")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, booking.Unavailable(err, "listing audit log entries")
	}

	return out, nil
}

// ListForBooking returns a booking's transitions in the order they happened.
func (r AuditLogRepo) ListForBooking(ctx context.Context, bookingID, tenantID string) ([]entity.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT log_id, booking_id, event_id, user_id, tenant_id, action, note, created_at
		FROM booking_logs
		WHERE booking_id = $1 AND tenant_id = $2
		ORDER BY created_at`, bookingID, tenantID)
	if err != nil {
		return nil, booking.Unavailable(err, "listing audit log entries")
	}
	defer rows.Close()

	var out []entity.AuditLogEntry
	for rows.Next() {
		var e entity.AuditLogEntry
		err := rows.Scan(&e.ID, &e.BookingID, &e.EventID, &e.UserID, &e.TenantID, &e.Action, &e.Note, &e.CreatedAt)
		if err != nil {
			return nil, booking.Unavailable(err, "listing audit log entries")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, booking.Unavailable(err, "listing audit log entries")
	}

	return out, nil
}
