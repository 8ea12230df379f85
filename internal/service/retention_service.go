package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"projecthub/internal/repository"
)

const DefaultRetentionHorizon = 30 * 24 * time.Hour

// RetentionJob deletes read notifications older than the horizon. Unread
// notifications are kept whatever their age.
type RetentionJob struct {
	notifications NotificationStore
	horizon       time.Duration
	log           *slog.Logger
	now           func() time.Time

	lastDeleted atomic.Int64
}

func NewRetentionJob(notifications NotificationStore, horizon time.Duration, log *slog.Logger) *RetentionJob {
	if horizon <= 0 {
		horizon = DefaultRetentionHorizon
	}
	return &RetentionJob{
		notifications: notifications,
		horizon:       horizon,
		log:           log.With("job", JobRetention),
		now:           utcNow,
	}
}

func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.horizon)
	deleted, err := j.notifications.DeleteMany(ctx, repository.NotificationFilter{
		Read:          repository.Ptr(true),
		CreatedBefore: &cutoff,
	})
	if err != nil {
		return fmt.Errorf("delete read notifications: %w", err)
	}
	j.lastDeleted.Store(deleted)
	j.log.Info("old notifications deleted", "deleted", deleted, "cutoff", cutoff)
	return nil
}

// LastDeleted returns how many notifications the last successful run removed.
func (j *RetentionJob) LastDeleted() int64 {
	return j.lastDeleted.Load()
}
