package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"projecthub/internal/model"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return storeErr("create notification", err)
	}
	return nil
}

// MarkDelivered records a successful out-of-band delivery.
func (r *NotificationRepository) MarkDelivered(ctx context.Context, id uint, at time.Time) error {
	at = at.UTC()
	err := r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"email_sent": true, "email_sent_at": at}).Error
	if err != nil {
		return storeErr(fmt.Sprintf("mark notification %d delivered", id), err)
	}
	return nil
}

func (r *NotificationRepository) Find(ctx context.Context, filter NotificationFilter) ([]model.Notification, error) {
	var out []model.Notification
	if err := filter.apply(r.db.WithContext(ctx).Model(&model.Notification{})).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, storeErr("find notifications", err)
	}
	return out, nil
}

// DeleteMany removes every notification matching filter and returns the
// number deleted. An empty filter is rejected.
func (r *NotificationRepository) DeleteMany(ctx context.Context, filter NotificationFilter) (int64, error) {
	if filter.empty() {
		return 0, fmt.Errorf("delete notifications: %w: refusing unfiltered delete", ErrStore)
	}
	res := filter.apply(r.db.WithContext(ctx)).Delete(&model.Notification{})
	if res.Error != nil {
		return 0, storeErr("delete notifications", res.Error)
	}
	return res.RowsAffected, nil
}
