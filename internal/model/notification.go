package model

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType identifies what raised a notification.
type NotificationType string

const (
	NotificationTaskAssigned       NotificationType = "task_assigned"
	NotificationTaskUpdated        NotificationType = "task_updated"
	NotificationTaskCompleted      NotificationType = "task_completed"
	NotificationCommentAdded       NotificationType = "comment_added"
	NotificationCommentMention     NotificationType = "comment_mention"
	NotificationDueDateReminder    NotificationType = "due_date_reminder"
	NotificationOverdueAlert       NotificationType = "overdue_alert"
	NotificationDependencyResolved NotificationType = "dependency_resolved"
)

// Notification is an in-app message for a single recipient.
type Notification struct {
	ID          uint             `gorm:"primaryKey"`
	RecipientID uint             `gorm:"index:idx_recipient_read_created,priority:1"`
	Type        NotificationType `gorm:"index"`
	Title       string
	Message     string
	TaskID      *uint `gorm:"index"`
	TaskTitle   string

	// Read notifications become eligible for retention once old enough.
	Read   bool `gorm:"index:idx_recipient_read_created,priority:2;default:false"`
	ReadAt *time.Time

	EmailSent   bool `gorm:"default:false"`
	EmailSentAt *time.Time

	CreatedAt time.Time `gorm:"index:idx_recipient_read_created,priority:3"`
}

func (n *Notification) BeforeSave(*gorm.DB) error {
	n.CreatedAt = n.CreatedAt.UTC()
	n.ReadAt = utcPtr(n.ReadAt)
	n.EmailSentAt = utcPtr(n.EmailSentAt)
	return nil
}
