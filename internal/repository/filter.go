package repository

import (
	"time"

	"gorm.io/gorm"

	"projecthub/internal/model"
)

// TaskFilter selects tasks. Nil fields do not constrain the query; set
// fields are ANDed together.
type TaskFilter struct {
	OwnerID   *uint
	Status    *model.Status
	StatusNot *model.Status

	// DueFrom and DueTo bound the due date inclusively.
	DueFrom   *time.Time
	DueTo     *time.Time
	DueBefore *time.Time
	DueAt     *time.Time

	DueDateNotified *bool
	OverdueNotified *bool

	RecurrenceEnabled *bool
	// RecurrenceActiveAt keeps rules with no end date or one not before t.
	RecurrenceActiveAt *time.Time
	// ProcessedBefore keeps rules never processed or last processed before t.
	ProcessedBefore *time.Time
	ParentTaskID    *uint

	UpdatedSince *time.Time
}

func (f TaskFilter) apply(db *gorm.DB) *gorm.DB {
	if f.OwnerID != nil {
		db = db.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.StatusNot != nil {
		db = db.Where("status <> ?", *f.StatusNot)
	}
	if f.DueFrom != nil {
		db = db.Where("due_date >= ?", f.DueFrom.UTC())
	}
	if f.DueTo != nil {
		db = db.Where("due_date <= ?", f.DueTo.UTC())
	}
	if f.DueBefore != nil {
		db = db.Where("due_date < ?", f.DueBefore.UTC())
	}
	if f.DueAt != nil {
		db = db.Where("due_date = ?", f.DueAt.UTC())
	}
	if f.DueDateNotified != nil {
		db = db.Where("due_date_notified = ?", *f.DueDateNotified)
	}
	if f.OverdueNotified != nil {
		db = db.Where("overdue_notified = ?", *f.OverdueNotified)
	}
	if f.RecurrenceEnabled != nil {
		db = db.Where("recurrence_enabled = ?", *f.RecurrenceEnabled)
	}
	if f.RecurrenceActiveAt != nil {
		db = db.Where("(recurrence_end_date IS NULL OR recurrence_end_date >= ?)", f.RecurrenceActiveAt.UTC())
	}
	if f.ProcessedBefore != nil {
		db = db.Where("(recurrence_last_processed IS NULL OR recurrence_last_processed < ?)", f.ProcessedBefore.UTC())
	}
	if f.ParentTaskID != nil {
		db = db.Where("recurrence_parent_task_id = ?", *f.ParentTaskID)
	}
	if f.UpdatedSince != nil {
		db = db.Where("updated_at >= ?", f.UpdatedSince.UTC())
	}
	return db
}

// NotificationFilter selects notifications for bulk operations.
type NotificationFilter struct {
	RecipientID   *uint
	Read          *bool
	CreatedBefore *time.Time
	Type          *model.NotificationType
	TaskID        *uint
}

func (f NotificationFilter) apply(db *gorm.DB) *gorm.DB {
	if f.RecipientID != nil {
		db = db.Where("recipient_id = ?", *f.RecipientID)
	}
	if f.Read != nil {
		db = db.Where("read = ?", *f.Read)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", f.CreatedBefore.UTC())
	}
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	if f.TaskID != nil {
		db = db.Where("task_id = ?", *f.TaskID)
	}
	return db
}

// empty reports whether no constraint is set; bulk deletes refuse it.
func (f NotificationFilter) empty() bool {
	return f == NotificationFilter{}
}

// Ptr returns a pointer to v, for building filters inline.
func Ptr[T any](v T) *T {
	return &v
}
