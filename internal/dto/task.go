package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yukikurage/productivity-api/internal/models"
	"github.com/yukikurage/productivity-api/internal/services"
)

// MessageResponse is the confirmation body of mutating endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Status      models.TaskStatus `json:"status"`
	Deadline    time.Time         `json:"deadline"`
}

// DashboardDTO represents the productivity summary
type DashboardDTO struct {
	TotalTasks     int64   `json:"total_tasks"`
	Completed      int64   `json:"completed"`
	Overdue        int64   `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}

// GenerateTasksResponse reports how many tasks were created from text
type GenerateTasksResponse struct {
	Message string `json:"message"`
	Created int    `json:"created"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		Deadline:    task.Deadline,
	}
}

// ToTaskDTOs converts tasks, always returning a non-nil slice
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToDashboardDTO converts the service summary
func ToDashboardDTO(d services.Dashboard) DashboardDTO {
	return DashboardDTO{
		TotalTasks:     d.TotalTasks,
		Completed:      d.Completed,
		Overdue:        d.Overdue,
		CompletionRate: d.CompletionRate,
	}
}

// Deadline decodes an ISO 8601 timestamp. A timestamp without a zone is UTC.
type Deadline struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Deadline) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("deadline must be a string: %w", err)
	}
	t, err := models.ParseDeadline(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
