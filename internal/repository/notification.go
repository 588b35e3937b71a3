package repository

import (
	"context"

	"mutuals/internal/models"
	"mutuals/internal/observability"

	"gorm.io/gorm"
)

// NotificationRepository appends notifications and supports the single bulk
// mutation the system allows: marking all of a user's unread rows read.
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	Create(ctx context.Context, notification *models.Notification) error
	ListUnread(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

// notificationRepository implements NotificationRepository
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListUnread(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

// MarkAllRead flips every unread row for the user and returns the affected
// count. Calling it again immediately yields zero.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	defer observability.TrackQuery("update", "notifications")()
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
