package service

import (
	"context"
	"time"

	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// Names the jobs are registered under.
const (
	JobReminders    = "reminders"
	JobRecurrence   = "recurrence"
	JobWeeklyDigest = "weekly-digest"
	JobRetention    = "retention"
	JobHealthCheck  = "health-check"
)

// TaskStore is the slice of task persistence the jobs rely on.
type TaskStore interface {
	Find(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error)
	Count(ctx context.Context, filter repository.TaskFilter) (int64, error)
	Create(ctx context.Context, task *model.Task) error
	Save(ctx context.Context, task *model.Task, columns ...string) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	MarkDelivered(ctx context.Context, id uint, at time.Time) error
	DeleteMany(ctx context.Context, filter repository.NotificationFilter) (int64, error)
}

type UserStore interface {
	ListDigestSubscribers(ctx context.Context) ([]model.User, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func utcNow() time.Time { return time.Now().UTC() }
