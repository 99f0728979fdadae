package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "userID", n.UserID, "title", n.Title)

	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "reason", "failed to marshal attributes")
		return domain.NewStoreError("marshal notification attributes", err)
	}

	query := `INSERT INTO notifications (user_id, title, message, is_read, attributes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	logger.DatabaseCall("INSERT", "notifications", "userID", n.UserID)

	n.CreatedAt = time.Now().UTC()
	err = r.db.QueryRowContext(ctx, query, n.UserID, n.Title, n.Message, n.IsRead, attrs, n.CreatedAt).Scan(&n.ID)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "userID", n.UserID)
		return translate("insert notification", "notification", nil, err)
	}
	logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, translate("count notifications", "notification", nil, err)
	}

	query := `SELECT id, user_id, title, message, is_read, attributes, created_at
	          FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, translate("list notifications", "notification", nil, err)
	}
	defer rows.Close()

	notes := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &attrs, &n.CreatedAt); err != nil {
			return nil, 0, domain.NewStoreError("scan notification", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, domain.NewStoreError("unmarshal notification attributes", err)
			}
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.NewStoreError("list notifications", err)
	}
	return notes, count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return translate("mark notification read", "notification", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NewStoreError("mark notification read", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("notification", id)
	}
	return nil
}
