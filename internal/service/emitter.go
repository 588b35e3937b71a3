// Package service contains the engines that drive the friend-request
// lifecycle, blocking, and their audit/notification side effects.
package service

import (
	"context"

	"mutuals/internal/models"
	"mutuals/internal/repository"

	"gorm.io/gorm"
)

// Emitter owns the Activity and Notification tables. Engines never write
// them directly: they hand the emitter their open transaction via WithTx so
// that an emission failure rolls the whole state change back.
type Emitter struct {
	activities    repository.ActivityRepository
	notifications repository.NotificationRepository
}

// NewEmitter returns an Emitter over the given repositories.
func NewEmitter(activities repository.ActivityRepository, notifications repository.NotificationRepository) *Emitter {
	return &Emitter{
		activities:    activities,
		notifications: notifications,
	}
}

// WithTx returns a copy of the emitter bound to the given transaction.
func (e *Emitter) WithTx(tx *gorm.DB) *Emitter {
	return &Emitter{
		activities:    e.activities.WithTx(tx),
		notifications: e.notifications.WithTx(tx),
	}
}

// Record appends an audit-log entry for the actor.
func (e *Emitter) Record(ctx context.Context, actorID uint, action string, targetUserID *uint) (*models.Activity, error) {
	activity := &models.Activity{
		UserID:       actorID,
		Action:       action,
		TargetUserID: targetUserID,
	}
	if err := e.activities.Create(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// Notify appends an unread notification for the recipient.
func (e *Emitter) Notify(ctx context.Context, recipientID uint, message string) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  recipientID,
		Message: message,
		IsRead:  false,
	}
	if err := e.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// MarkAllRead flips all unread notifications for the user to read and
// returns the number of rows affected. Idempotent.
func (e *Emitter) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return e.notifications.MarkAllRead(ctx, userID)
}

// ListUnread returns the user's unread notifications, newest first.
func (e *Emitter) ListUnread(ctx context.Context, userID uint) ([]models.Notification, error) {
	return e.notifications.ListUnread(ctx, userID)
}

// Activities returns the user's own audit-log entries, newest first.
func (e *Emitter) Activities(ctx context.Context, userID uint, limit, offset int) ([]models.Activity, error) {
	return e.activities.ListByUser(ctx, userID, limit, offset)
}
