package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"projecthub/internal/model"
	"projecthub/internal/notify"
	"projecthub/internal/repository"
)

type DigestConfig struct {
	// Window is the trailing period "completed" is counted over.
	Window      time.Duration
	FrontendURL string
}

func DefaultDigestConfig() DigestConfig {
	return DigestConfig{Window: 7 * 24 * time.Hour}
}

// DigestJob sends every opted-in user a summary of their tasks.
type DigestJob struct {
	tasks    TaskStore
	users    UserStore
	notifier notify.Notifier
	cfg      DigestConfig
	log      *slog.Logger
	now      func() time.Time
}

func NewDigestJob(tasks TaskStore, users UserStore, notifier notify.Notifier, cfg DigestConfig, log *slog.Logger) *DigestJob {
	if cfg.Window <= 0 {
		cfg.Window = 7 * 24 * time.Hour
	}
	return &DigestJob{
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With("job", JobWeeklyDigest),
		now:      utcNow,
	}
}

func (j *DigestJob) Run(ctx context.Context) error {
	now := j.now()
	users, err := j.users.ListDigestSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("list digest subscribers: %w", err)
	}

	failures := &ItemFailures{Job: JobWeeklyDigest, Total: len(users)}
	sent := 0
	for i := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		user := users[i]
		if !user.HasContact() {
			j.log.Debug("skipping digest for user without contact", "user_id", user.ID)
			continue
		}
		if err := guard(func() error { return j.send(ctx, user, now) }); err != nil {
			j.log.Error("digest failed", "user_id", user.ID, "error", err)
			failures.add(fmt.Errorf("user %d: %w", user.ID, err))
			continue
		}
		sent++
	}

	j.log.Info("weekly digests sent", "sent", sent, "subscribers", len(users))
	return failures.err()
}

func (j *DigestJob) send(ctx context.Context, user model.User, now time.Time) error {
	stats, err := j.stats(ctx, user.ID, now)
	if err != nil {
		return err
	}
	res := j.notifier.Send(ctx, notify.KindWeeklyDigest, notify.RecipientFor(user), notify.Payload{
		Stats: stats,
		Link:  j.dashboardLink(),
	})
	return res.Err()
}

// stats counts the four digest figures for one owner.
func (j *DigestJob) stats(ctx context.Context, ownerID uint, now time.Time) (notify.DigestStats, error) {
	since := now.Add(-j.cfg.Window)
	owner := &ownerID

	var s notify.DigestStats
	counts := []struct {
		dst    *int64
		filter repository.TaskFilter
	}{
		{&s.Completed, repository.TaskFilter{OwnerID: owner, Status: repository.Ptr(model.StatusCompleted), UpdatedSince: &since}},
		{&s.InProgress, repository.TaskFilter{OwnerID: owner, Status: repository.Ptr(model.StatusInProgress)}},
		{&s.Pending, repository.TaskFilter{OwnerID: owner, Status: repository.Ptr(model.StatusPending)}},
		{&s.Overdue, repository.TaskFilter{OwnerID: owner, StatusNot: repository.Ptr(model.StatusCompleted), DueBefore: &now}},
	}
	for _, c := range counts {
		n, err := j.tasks.Count(ctx, c.filter)
		if err != nil {
			return notify.DigestStats{}, err
		}
		*c.dst = n
	}
	return s, nil
}

func (j *DigestJob) dashboardLink() string {
	if j.cfg.FrontendURL == "" {
		return ""
	}
	return strings.TrimRight(j.cfg.FrontendURL, "/") + "/dashboard"
}
