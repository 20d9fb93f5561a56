package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/productivity-api/internal/database"
	"github.com/yukikurage/productivity-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Transaction runs fn in a database transaction, rolling back on error or panic
func (r *GormTaskRepository) Transaction(ctx context.Context, fn func(repo TaskRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormTaskRepository{db: tx})
	})
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// CreateBatch creates several tasks in one statement
func (r *GormTaskRepository) CreateBatch(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tasks).Error
}

// FindByIDForOwner finds a task by ID, returning gorm.ErrRecordNotFound when
// it does not exist or belongs to someone else
func (r *GormTaskRepository) FindByIDForOwner(ctx context.Context, id, ownerID uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves the owner's tasks with filtering
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}

	err := r.db.WithContext(ctx).
		Scopes(
			database.OwnedBy(filter.OwnerID),
			database.WithStatus(filter.Status),
			database.WithPriority(filter.Priority),
			database.TitleContains(filter.Search),
		).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	if filter.Status == "" && filter.Priority == "" && filter.Search == "" {
		return tasks, nil
	}

	// SQL comparisons follow the column collation; filters are exact.
	matched := tasks[:0]
	for _, task := range tasks {
		if filter.matches(task) {
			matched = append(matched, task)
		}
	}
	return matched, nil
}

func (f TaskFilter) matches(task models.Task) bool {
	if f.Status != "" && string(task.Status) != f.Status {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	return strings.Contains(task.Title, f.Search)
}

// MarkOverdue promotes the given tasks to Overdue. UpdateColumn skips hooks
// and time tracking, so updated_at keeps its previous value.
func (r *GormTaskRepository) MarkOverdue(ctx context.Context, ownerID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.OwnedBy(ownerID)).
		Where("id IN ?", ids).
		UpdateColumn("status", models.TaskStatusOverdue).Error
}

// UpdateColumns writes only the named columns of task
func (r *GormTaskRepository) UpdateColumns(ctx context.Context, task *models.Task, columns []string) error {
	return r.db.WithContext(ctx).
		Model(task).
		Select(columns).
		Updates(task).Error
}

// Delete permanently deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Delete(task).Error
}

type statusCount struct {
	Status models.TaskStatus
	Count  int64
}

// CountByStatus counts the owner's tasks per status
func (r *GormTaskRepository) CountByStatus(ctx context.Context, ownerID uint64) (map[models.TaskStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Scopes(database.OwnedBy(ownerID)).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] += row.Count
	}
	return counts, nil
}
