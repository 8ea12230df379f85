package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"projecthub/internal/model"
	"projecthub/internal/repository"
)

type RecurrenceConfig struct {
	// GuardWindow is the minimum time since LastProcessed before a parent
	// is looked at again.
	GuardWindow time.Duration
	// Location is the calendar month and year steps are taken in.
	Location *time.Location
}

func DefaultRecurrenceConfig() RecurrenceConfig {
	return RecurrenceConfig{GuardWindow: time.Hour, Location: time.UTC}
}

// RecurrenceJob spawns the next occurrence of completed recurring tasks.
type RecurrenceJob struct {
	tasks TaskStore
	cfg   RecurrenceConfig
	log   *slog.Logger
	now   func() time.Time
}

func NewRecurrenceJob(tasks TaskStore, cfg RecurrenceConfig, log *slog.Logger) *RecurrenceJob {
	if cfg.GuardWindow <= 0 {
		cfg.GuardWindow = time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &RecurrenceJob{
		tasks: tasks,
		cfg:   cfg,
		log:   log.With("job", JobRecurrence),
		now:   utcNow,
	}
}

func (j *RecurrenceJob) Run(ctx context.Context) error {
	now := j.now()
	processedBefore := now.Add(-j.cfg.GuardWindow)

	tasks, err := j.tasks.Find(ctx, repository.TaskFilter{
		Status:             repository.Ptr(model.StatusCompleted),
		RecurrenceEnabled:  repository.Ptr(true),
		RecurrenceActiveAt: &now,
		ProcessedBefore:    &processedBefore,
	})
	if err != nil {
		return fmt.Errorf("find recurring tasks: %w", err)
	}
	j.log.Info("found recurring tasks", "count", len(tasks))

	failures := &ItemFailures{Job: JobRecurrence, Total: len(tasks)}
	spawned := 0
	for i := range tasks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		task := &tasks[i]
		var created bool
		err := guard(func() (err error) {
			created, err = j.process(ctx, task, now)
			return err
		})
		switch {
		case errors.Is(err, model.ErrInvalidRule):
			j.log.Warn("skipping task with invalid recurrence rule", "task_id", task.ID, "error", err)
			failures.add(fmt.Errorf("task %d: %w", task.ID, err))
		case err != nil:
			j.log.Error("recurrence processing failed", "task_id", task.ID, "error", err)
			failures.add(fmt.Errorf("task %d: %w", task.ID, err))
		case created:
			spawned++
		}
	}

	j.log.Info("recurrence run finished", "candidates", len(tasks), "spawned", spawned, "failed", len(failures.Errs))
	return failures.err()
}

// process spawns at most one child for task. It reports whether a new
// child was created.
func (j *RecurrenceJob) process(ctx context.Context, task *model.Task, now time.Time) (bool, error) {
	next, ok, err := task.Recurrence.Next(task.DueDate.In(j.cfg.Location))
	if err != nil {
		return false, err
	}
	if !ok {
		j.log.Info("recurrence ended", "task_id", task.ID, "end_date", task.Recurrence.EndDate)
		return false, nil
	}
	next = next.UTC()

	existing, err := j.tasks.Count(ctx, repository.TaskFilter{
		ParentTaskID: &task.ID,
		DueAt:        &next,
	})
	if err != nil {
		return false, err
	}

	created := false
	if existing == 0 {
		child := task.Spawn(next)
		if err := j.tasks.Create(ctx, &child); err != nil {
			return false, err
		}
		created = true
		j.log.Info("spawned recurring task", "task_id", task.ID, "child_id", child.ID, "due_date", next)
	} else {
		j.log.Info("child already exists", "task_id", task.ID, "due_date", next)
	}

	processed := now
	task.Recurrence.LastProcessed = &processed
	if err := j.tasks.Save(ctx, task, "recurrence_last_processed"); err != nil {
		return created, err
	}
	return created, nil
}
