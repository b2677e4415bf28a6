package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/model"
)

type NotificationRepository interface {
	// Записать уведомление.
	Create(ctx context.Context, n *model.Notification) error
	// Уведомления пользователя, новые сверху.
	ListByUser(ctx context.Context, userID string) ([]model.Notification, error)
	// Пометить все непрочитанные уведомления пользователя прочитанными.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *GormNotificationRepository) ListByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	var out []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
