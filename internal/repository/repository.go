package repository

import (
	"context"

	"github.com/yukikurage/productivity-api/internal/models"
)

// TaskRepository defines the interface for task data access. Every method
// that reads or writes tasks is scoped by owner through the filter or the
// owner argument.
type TaskRepository interface {
	// Transaction runs fn inside one unit of work; fn receives a repository
	// bound to the transaction.
	Transaction(ctx context.Context, fn func(repo TaskRepository) error) error

	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// CreateBatch inserts several tasks at once
	CreateBatch(ctx context.Context, tasks []models.Task) error

	// FindByIDForOwner finds a task by ID belonging to ownerID
	FindByIDForOwner(ctx context.Context, id, ownerID uint64) (*models.Task, error)

	// List retrieves the owner's tasks matching the filter, ordered by ID
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// MarkOverdue sets status to Overdue on the given tasks without touching updated_at
	MarkOverdue(ctx context.Context, ownerID uint64, ids []uint64) error

	// UpdateColumns writes the named columns of task
	UpdateColumns(ctx context.Context, task *models.Task, columns []string) error

	// Delete permanently removes a task
	Delete(ctx context.Context, task *models.Task) error

	// CountByStatus counts the owner's tasks grouped by status
	CountByStatus(ctx context.Context, ownerID uint64) (map[models.TaskStatus]int64, error)
}

// TaskFilter holds filtering options for listing tasks. Empty strings mean
// no constraint.
type TaskFilter struct {
	OwnerID  uint64
	Status   string
	Priority string
	Search   string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByEmail finds a user by exact email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
