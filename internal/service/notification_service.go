package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/restobook/reservation-platform/internal/model"
	"github.com/restobook/reservation-platform/internal/repository"
)

// NotificationService — чтение пользовательских уведомлений.
// Записывают их операции жизненного цикла брони.
type NotificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListByUser — уведомления пользователя, новые сверху.
func (s *NotificationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	return s.notifications.ListByUser(ctx, userID.String())
}

// MarkAllRead помечает все непрочитанные уведомления пользователя.
// Возвращает количество затронутых строк.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID.String())
}
