package services

import (
	"context"
	"log"

	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"
)

type NotificationService struct {
	Repo *repositories.NotificationRepository
}

func NewNotificationService(repo *repositories.NotificationRepository) *NotificationService {
	return &NotificationService{Repo: repo}
}

// Notify creates a notification row, fire-and-forget: a failure is logged
// and swallowed so it never fails the operation that raised it.
func (s *NotificationService) Notify(ctx context.Context, notifType, message string, refID *int) {
	n := &models.Notification{
		Type:    notifType,
		Message: message,
		RefID:   refID,
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		log.Printf("[Notify] failed to create %s notification: %v", notifType, err)
	}
}

func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]*models.Notification, error) {
	return s.Repo.List(ctx, unreadOnly, 100)
}

func (s *NotificationService) MarkRead(ctx context.Context, id int) error {
	return s.Repo.MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.Repo.MarkAllRead(ctx)
}
