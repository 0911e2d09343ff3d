package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bookings/booking"
	"bookings/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const notificationColumns = "notification_id, user_id, booking_id, type, title, message, read, tenant_id, created_at"

type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) NotificationRepo {
	return NotificationRepo{
		db: db,
	}
}

func (r NotificationRepo) Add(ctx context.Context, n entity.NotificationRecord) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO notifications
		(notification_id, user_id, booking_id, type, title, message, read, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		n.ID, n.UserID, n.BookingID, n.Type, n.Title, n.Message, n.Read, n.TenantID)
	if err != nil {
		return booking.Unavailable(err, "adding notification")
	}
	return nil
}

func (r NotificationRepo) ListForUser(ctx context.Context, userID, tenantID string, unreadOnly bool) ([]entity.NotificationRecord, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND tenant_id = $2`
	if unreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, tenantID)
	if err != nil {
		return nil, booking.Unavailable(err, "listing notifications")
	}
	defer rows.Close()

	var out []entity.NotificationRecord
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, booking.Unavailable(err, "listing notifications")
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, booking.Unavailable(err, "listing notifications")
	}

	return out, nil
}

// MarkRead flips the read flag. Only the owning user within their own tenant
// may do so.
func (r NotificationRepo) MarkRead(ctx context.Context, notificationID, userID, tenantID string) (entity.NotificationRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+`
		FROM notifications WHERE notification_id = $1`, notificationID)

	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.NotificationRecord{}, booking.E(booking.KindNotFound, "notification not found")
	}
	if err != nil {
		return entity.NotificationRecord{}, booking.Unavailable(err, "loading notification")
	}

	if n.UserID != userID || n.TenantID != tenantID {
		return entity.NotificationRecord{}, booking.E(booking.KindAccessDenied, "access denied")
	}

	_, err = r.db.ExecContext(ctx, `UPDATE notifications SET read = true
		WHERE notification_id = $1`, notificationID)
	if err != nil {
		return entity.NotificationRecord{}, booking.Unavailable(err, "marking notification read")
	}

	n.Read = true
	return n, nil
}

// UnreadCount backs the notification badge.
func (r NotificationRepo) UnreadCount(ctx context.Context, userID, tenantID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM notifications
		WHERE user_id = $1 AND tenant_id = $2 AND read = false`,
		userID, tenantID).Scan(&count)
	if err != nil {
		return 0, booking.Unavailable(err, "counting unread notifications")
	}
	return count, nil
}

func scanNotification(row scanner) (entity.NotificationRecord, error) {
	var n entity.NotificationRecord
	err := row.Scan(&n.ID, &n.UserID, &n.BookingID, &n.Type, &n.Title, &n.Message, &n.Read, &n.TenantID, &n.CreatedAt)
	return n, err
}
