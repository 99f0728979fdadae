package service

import (
	"context"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
)

const maxPageSize = 100

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

// Notify stores an in-app notification. Failures are logged and never
// surface to the caller.
func (s *notificationService) Notify(ctx context.Context, userID int32, title, message string, attrs map[string]string) {
	note := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to store notification", "userID", userID, "type", attrs["type"], "error", err)
		return
	}
	logger.Debug("Notification stored", "userID", userID, "notificationID", note.ID)
}
