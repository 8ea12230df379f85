package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"projecthub/internal/model"
	"projecthub/internal/notify"
	"projecthub/internal/repository"
)

// ReminderConfig tunes the reminder job.
type ReminderConfig struct {
	// DueSoonWindow is how far ahead a due date triggers a reminder.
	DueSoonWindow time.Duration
	// Location decides what "today" means in messages.
	Location    *time.Location
	FrontendURL string
}

func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{DueSoonWindow: 24 * time.Hour, Location: time.UTC}
}

// ReminderJob raises due-soon and overdue notifications. Each alert type is
// raised at most once per task: the matching flag on the task is sticky.
type ReminderJob struct {
	tasks         TaskStore
	notifications NotificationStore
	notifier      notify.Notifier
	cfg           ReminderConfig
	log           *slog.Logger
	now           func() time.Time
}

func NewReminderJob(tasks TaskStore, notifications NotificationStore, notifier notify.Notifier, cfg ReminderConfig, log *slog.Logger) *ReminderJob {
	if cfg.DueSoonWindow <= 0 {
		cfg.DueSoonWindow = 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ReminderJob{
		tasks:         tasks,
		notifications: notifications,
		notifier:      notifier,
		cfg:           cfg,
		log:           log.With("job", JobReminders),
		now:           utcNow,
	}
}

// Run executes the due-soon pass and then the overdue pass. The passes are
// independent: a failed query in one does not skip the other.
func (j *ReminderJob) Run(ctx context.Context) error {
	now := j.now()
	return errors.Join(j.dueSoonPass(ctx, now), j.overduePass(ctx, now))
}

func (j *ReminderJob) dueSoonPass(ctx context.Context, now time.Time) error {
	horizon := now.Add(j.cfg.DueSoonWindow)
	tasks, err := j.tasks.Find(ctx, repository.TaskFilter{
		StatusNot:       repository.Ptr(model.StatusCompleted),
		DueFrom:         &now,
		DueTo:           &horizon,
		DueDateNotified: repository.Ptr(false),
	})
	if err != nil {
		return fmt.Errorf("due-soon pass: %w", err)
	}
	j.log.Info("found tasks due soon", "count", len(tasks), "window", j.cfg.DueSoonWindow)

	failures := &ItemFailures{Job: JobReminders + "/due-soon", Total: len(tasks)}
	for i := range tasks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		task := &tasks[i]
		if err := guard(func() error { return j.remindDueSoon(ctx, task, now) }); err != nil {
			j.log.Error("due-soon reminder failed", "task_id", task.ID, "error", err)
			failures.add(fmt.Errorf("task %d: %w", task.ID, err))
		}
	}
	return failures.err()
}

func (j *ReminderJob) remindDueSoon(ctx context.Context, task *model.Task, now time.Time) error {
	n := model.Notification{
		RecipientID: task.OwnerID,
		Type:        model.NotificationDueDateReminder,
		Title:       "Task Due Soon",
		Message:     fmt.Sprintf("Task %q is due %s", task.Title, j.dueDay(task.DueDate, now)),
		TaskID:      &task.ID,
		TaskTitle:   task.Title,
		CreatedAt:   now,
	}
	if err := j.notifications.Create(ctx, &n); err != nil {
		return err
	}

	if task.Owner.HasContact() {
		j.deliver(ctx, task, &n, now)
	}

	task.DueDateNotified = true
	return j.tasks.Save(ctx, task, "due_date_notified")
}

// deliver attempts out-of-band delivery. Failures are logged only; the
// notification is marked as emailed only when the email channel accepted it.
func (j *ReminderJob) deliver(ctx context.Context, task *model.Task, n *model.Notification, now time.Time) {
	res := j.notifier.Send(ctx, notify.KindDueReminder, notify.RecipientFor(task.Owner), notify.Payload{
		TaskID:          task.ID,
		TaskTitle:       task.Title,
		TaskDescription: task.Description,
		DueDate:         task.DueDate.In(j.cfg.Location),
		Link:            j.taskLink(task.ID),
	})
	if !res.Success {
		j.log.Warn("reminder delivery failed", "task_id", task.ID, "user_id", task.OwnerID, "error", res.Err())
		return
	}
	if !res.DeliveredVia(notify.ChannelEmail) {
		j.log.Debug("reminder delivered without email", "task_id", task.ID, "channels", res.Channels)
		return
	}
	if err := j.notifications.MarkDelivered(ctx, n.ID, now); err != nil {
		j.log.Warn("could not record reminder delivery", "task_id", task.ID, "notification_id", n.ID, "error", err)
	}
}

func (j *ReminderJob) overduePass(ctx context.Context, now time.Time) error {
	tasks, err := j.tasks.Find(ctx, repository.TaskFilter{
		StatusNot:       repository.Ptr(model.StatusCompleted),
		DueBefore:       &now,
		OverdueNotified: repository.Ptr(false),
	})
	if err != nil {
		return fmt.Errorf("overdue pass: %w", err)
	}
	j.log.Info("found overdue tasks", "count", len(tasks))

	failures := &ItemFailures{Job: JobReminders + "/overdue", Total: len(tasks)}
	for i := range tasks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		task := &tasks[i]
		if err := guard(func() error { return j.alertOverdue(ctx, task, now) }); err != nil {
			j.log.Error("overdue alert failed", "task_id", task.ID, "error", err)
			failures.add(fmt.Errorf("task %d: %w", task.ID, err))
		}
	}
	return failures.err()
}

func (j *ReminderJob) alertOverdue(ctx context.Context, task *model.Task, now time.Time) error {
	n := model.Notification{
		RecipientID: task.OwnerID,
		Type:        model.NotificationOverdueAlert,
		Title:       "Task Overdue",
		Message:     fmt.Sprintf("Task %q is overdue!", task.Title),
		TaskID:      &task.ID,
		TaskTitle:   task.Title,
		CreatedAt:   now,
	}
	if err := j.notifications.Create(ctx, &n); err != nil {
		return err
	}

	task.OverdueNotified = true
	return j.tasks.Save(ctx, task, "overdue_notified")
}

func (j *ReminderJob) dueDay(due, now time.Time) string {
	dy, dm, dd := due.In(j.cfg.Location).Date()
	ny, nm, nd := now.In(j.cfg.Location).Date()
	if dy == ny && dm == nm && dd == nd {
		return "today"
	}
	return "tomorrow"
}

func (j *ReminderJob) taskLink(id uint) string {
	if j.cfg.FrontendURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/tasks/%d", strings.TrimRight(j.cfg.FrontendURL, "/"), id)
}
