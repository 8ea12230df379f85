package model

import (
	"time"

	"gorm.io/gorm"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// Priority of a task as chosen by its owner.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Task represents a single tracked item. The background jobs only touch the
// notified flags, the recurrence bookkeeping and spawned children; everything
// else belongs to the CRUD tier.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	OwnerID     uint `gorm:"index"`
	Owner       User `gorm:"foreignKey:OwnerID"`
	Title       string
	Description string
	Assignee    string
	Priority    Priority  `gorm:"default:Medium"`
	Status      Status    `gorm:"index;default:Pending"`
	DueDate     time.Time `gorm:"index"`

	// Sticky: flipped false->true by the reminder job and never reset.
	DueDateNotified bool `gorm:"default:false"`
	OverdueNotified bool `gorm:"default:false"`

	Repo   string
	Branch string
	Labels []Label `gorm:"many2many:task_labels"`

	Recurrence Recurrence `gorm:"embedded;embeddedPrefix:recurrence_"`

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeSave stores every timestamp in UTC. SQLite compares timestamps as
// text, so mixed zones would order wrongly.
func (t *Task) BeforeSave(*gorm.DB) error {
	t.NormalizeTimes()
	return nil
}

// NormalizeTimes converts the task's timestamps to UTC in place.
func (t *Task) NormalizeTimes() {
	t.DueDate = t.DueDate.UTC()
	t.CompletedAt = utcPtr(t.CompletedAt)
	t.Recurrence.EndDate = utcPtr(t.Recurrence.EndDate)
	t.Recurrence.LastProcessed = utcPtr(t.Recurrence.LastProcessed)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// IsOverdue reports whether the task is past due and still open at now.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusCompleted && t.DueDate.Before(now)
}

// Spawn builds the next occurrence of a recurring task due at dueDate. The
// child is a fresh record; only ParentTaskID points back to t.
func (t Task) Spawn(dueDate time.Time) Task {
	rec := t.Recurrence
	rec.LastProcessed = nil
	parentID := t.ID
	rec.ParentTaskID = &parentID

	labels := make([]Label, len(t.Labels))
	copy(labels, t.Labels)

	return Task{
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		Priority:    t.Priority,
		Status:      StatusPending,
		DueDate:     dueDate,
		Repo:        t.Repo,
		Branch:      t.Branch,
		Labels:      labels,
		Recurrence:  rec,
	}
}
