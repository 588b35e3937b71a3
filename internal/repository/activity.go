package repository

import (
	"context"

	"mutuals/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository appends and reads immutable audit-log entries. There is
// no update or delete path.
type ActivityRepository interface {
	WithTx(tx *gorm.DB) ActivityRepository
	Create(ctx context.Context, activity *models.Activity) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Activity, error)
}

// activityRepository implements ActivityRepository
type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	return &activityRepository{db: tx}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return activities, nil
}
