package repositories

import (
	"context"

	"fieldops-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO notifications(type, message, ref_id) VALUES($1, $2, $3)
		 RETURNING id, created_at`,
		n.Type, n.Message, n.RefID,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *NotificationRepository) List(ctx context.Context, unreadOnly bool, limit int) ([]*models.Notification, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, type, message, ref_id, read, created_at
		 FROM notifications
		 WHERE ($1 = FALSE OR read = FALSE)
		 ORDER BY created_at DESC LIMIT $2`, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.Type, &n.Message, &n.RefID, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1`, id)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE read=FALSE`)
	return err
}
