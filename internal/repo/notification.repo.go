package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"lojinha/internal/domain"
)

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Notification, error)
	// PurgeOlderThan deletes notifications past the retention window and
	// returns how many rows went away.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) NotificationRepo {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	var orderID any
	if n.OrderID != nil {
		orderID = *n.OrderID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, customer_id, order_id, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.CustomerID, orderID, n.Status, n.Message, n.CreatedAt,
	)
	return err
}

func (r *notificationRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, order_id, status, message, created_at
		FROM notifications WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var orderID uuid.NullUUID
		if err := rows.Scan(&n.ID, &n.CustomerID, &orderID, &n.Status, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		if orderID.Valid {
			id := orderID.UUID
			n.OrderID = &id
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
