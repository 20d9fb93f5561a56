package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yukikurage/productivity-api/internal/constants"
	"github.com/yukikurage/productivity-api/internal/metrics"
	"github.com/yukikurage/productivity-api/internal/models"
	"github.com/yukikurage/productivity-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
	ErrAIUpstream             = errors.New("AI service request failed")
)

// TaskService owns the task lifecycle. Every operation is scoped to the
// owner passed in and runs as a single transaction.
type TaskService struct {
	taskRepo  repository.TaskRepository
	generator TaskGenerator
	log       *zap.Logger
	now       func() time.Time
}

// NewTaskService creates a new TaskService. generator may be nil.
func NewTaskService(taskRepo repository.TaskRepository, generator TaskGenerator, log *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		generator: generator,
		log:       log,
		now:       time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID     uint64
	Title       string
	Description string
	Priority    string
	Deadline    time.Time
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	OwnerID  uint64
	Status   string
	Priority string
	Search   string
}

// UpdateTaskInput carries the fields of a partial update. Nil means the
// field was not supplied.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *models.TaskStatus
	Deadline    *time.Time
}

// Dashboard is the productivity summary of one owner's tasks.
type Dashboard struct {
	TotalTasks     int64
	Completed      int64
	Overdue        int64
	CompletionRate float64
}

// CreateTask creates a new Pending task for the owner
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleEmpty
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      models.TaskStatusPending,
		Deadline:    input.Deadline.UTC(),
		OwnerID:     input.OwnerID,
	}

	err := s.taskRepo.Transaction(ctx, func(repo repository.TaskRepository) error {
		return repo.Create(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.Info("task created", zap.Uint64("owner_id", task.OwnerID), zap.Uint64("task_id", task.ID))
	return task, nil
}

// ListTasks returns the owner's tasks matching the filters. Any returned task
// whose deadline has passed and which is not Completed is promoted to
// Overdue and persisted before the result is returned.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, error) {
	filter := repository.TaskFilter{
		OwnerID:  input.OwnerID,
		Status:   input.Status,
		Priority: input.Priority,
		Search:   input.Search,
	}

	var tasks []models.Task
	var promoted []uint64
	err := s.taskRepo.Transaction(ctx, func(repo repository.TaskRepository) error {
		var err error
		tasks, err = repo.List(ctx, filter)
		if err != nil {
			return err
		}

		now := s.now()
		promoted = promoted[:0]
		for i := range tasks {
			if tasks[i].IsOverdueAt(now) && tasks[i].Status != models.TaskStatusOverdue {
				tasks[i].Status = models.TaskStatusOverdue
				promoted = append(promoted, tasks[i].ID)
			}
		}

		return repo.MarkOverdue(ctx, input.OwnerID, promoted)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(promoted) > 0 {
		metrics.TasksMarkedOverdue.Add(float64(len(promoted)))
		s.log.Debug("tasks promoted to overdue", zap.Uint64("owner_id", input.OwnerID), zap.Int("count", len(promoted)))
	}
	return tasks, nil
}

// UpdateTask applies the supplied fields and stamps updated_at. Status
// transitions are not validated.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, ownerID uint64, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleEmpty
	}

	var task *models.Task
	err := s.taskRepo.Transaction(ctx, func(repo repository.TaskRepository) error {
		var err error
		task, err = repo.FindByIDForOwner(ctx, taskID, ownerID)
		if err != nil {
			return err
		}

		columns := make([]string, 0, 6)
		if input.Title != nil {
			task.Title = *input.Title
			columns = append(columns, "title")
		}
		if input.Description != nil {
			task.Description = *input.Description
			columns = append(columns, "description")
		}
		if input.Priority != nil {
			task.Priority = *input.Priority
			columns = append(columns, "priority")
		}
		if input.Status != nil {
			task.Status = *input.Status
			columns = append(columns, "status")
		}
		if input.Deadline != nil {
			task.Deadline = input.Deadline.UTC()
			columns = append(columns, "deadline")
		}

		now := s.now().UTC()
		task.UpdatedAt = &now
		columns = append(columns, "updated_at")

		return repo.UpdateColumns(ctx, task, columns)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask permanently removes one of the owner's tasks
func (s *TaskService) DeleteTask(ctx context.Context, taskID, ownerID uint64) error {
	err := s.taskRepo.Transaction(ctx, func(repo repository.TaskRepository) error {
		task, err := repo.FindByIDForOwner(ctx, taskID, ownerID)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, task)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// Dashboard summarises the owner's tasks by stored status. It does not run
// overdue promotion.
func (s *TaskService) Dashboard(ctx context.Context, ownerID uint64) (*Dashboard, error) {
	var counts map[models.TaskStatus]int64
	err := s.taskRepo.Transaction(ctx, func(repo repository.TaskRepository) error {
		var err error
		counts, err = repo.CountByStatus(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	return &Dashboard{
		TotalTasks:     total,
		Completed:      counts[models.TaskStatusCompleted],
		Overdue:        counts[models.TaskStatusOverdue],
		CompletionRate: CompletionRate(counts[models.TaskStatusCompleted], total),
	}, nil
}

// CompletionRate is completed/total as a percentage rounded to two decimals,
// or 0 when there are no tasks.
func CompletionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return math.Round(rate*100) / 100
}

// GenerateTasks turns free text into Pending tasks for the owner. Drafts
// without a title or a parseable deadline are skipped.
func (s *TaskService) GenerateTasks(ctx context.Context, ownerID uint64, text string) ([]models.Task, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.generator.GenerateTasksFromText(ctx, text)
	if err != nil {
		s.log.Warn("task generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAIUpstream, err)
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	tasks := make([]models.Task, 0, len(drafts))
	for _, draft := range drafts {
		if len(tasks) == constants.MaxAIGeneratedTasks {
			break
		}

		title := strings.TrimSpace(draft.Title)
		if title == "" {
			continue
		}
		deadline, err := models.ParseDeadline(draft.Deadline)
		if err != nil {
			s.log.Debug("skipping generated task with bad deadline", zap.String("title", title), zap.String("deadline", draft.Deadline))
			continue
		}
		priority := strings.TrimSpace(draft.Priority)
		if priority == "" {
			priority = constants.DefaultTaskPriority
		}

		tasks = append(tasks, models.Task{
			Title:       title,
			Description: strings.TrimSpace(draft.Description),
			Priority:    priority,
			Status:      models.TaskStatusPending,
			Deadline:    deadline.UTC(),
			OwnerID:     ownerID,
		})
	}
	if len(tasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	err = s.taskRepo.Transaction(ctx, func(repo repository.TaskRepository) error {
		return repo.CreateBatch(ctx, tasks)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generated tasks: %w", err)
	}

	metrics.TasksGenerated.Add(float64(len(tasks)))
	s.log.Info("tasks generated", zap.Uint64("owner_id", ownerID), zap.Int("count", len(tasks)))
	return tasks, nil
}
