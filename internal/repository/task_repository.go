package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"projecthub/internal/model"
)

// TaskRepository handles task reads and the narrow writes the jobs need.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return storeErr("create task", err)
	}
	return nil
}

// Find returns tasks matching filter with Owner and Labels loaded, ordered by
// due date.
func (r *TaskRepository) Find(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	q := filter.apply(r.db.WithContext(ctx).Model(&model.Task{}))
	if err := q.Preload("Owner").Preload("Labels").Order("due_date ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, storeErr("find tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Count(ctx context.Context, filter TaskFilter) (int64, error) {
	var n int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&model.Task{})).Count(&n).Error; err != nil {
		return 0, storeErr("count tasks", err)
	}
	return n, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Owner").Preload("Labels").First(&task, id).Error; err != nil {
		return nil, storeErr(fmt.Sprintf("find task %d", id), err)
	}
	return &task, nil
}

// Save persists task. When columns are given only those are written and
// updated_at is left alone, so job bookkeeping neither overwrites fields the
// web tier changed meanwhile nor looks like a user edit.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task, columns ...string) error {
	db := r.db.WithContext(ctx)
	var err error
	if len(columns) == 0 {
		err = db.Omit("Owner", "Labels").Save(task).Error
	} else {
		// UpdateColumns skips hooks.
		task.NormalizeTimes()
		err = db.Model(task).Select(columns).UpdateColumns(task).Error
	}
	if err != nil {
		return storeErr(fmt.Sprintf("save task %d", task.ID), err)
	}
	return nil
}
