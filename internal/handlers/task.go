package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/productivity-api/internal/dto"
	apierrors "github.com/yukikurage/productivity-api/internal/errors"
	"github.com/yukikurage/productivity-api/internal/middleware"
	"github.com/yukikurage/productivity-api/internal/models"
	"github.com/yukikurage/productivity-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a new Pending task for the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	// Description and priority may be empty strings but must be present.
	type CreateTaskRequest struct {
		Title       string        `json:"title" binding:"required"`
		Description *string       `json:"description" binding:"required"`
		Priority    *string       `json:"priority" binding:"required"`
		Deadline    *dto.Deadline `json:"deadline" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailedWithDetails(c, "Invalid request body", err.Error())
		return
	}

	if _, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		OwnerID:     user.ID,
		Title:       req.Title,
		Description: *req.Description,
		Priority:    *req.Priority,
		Deadline:    req.Deadline.Time,
	}); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task created"})
}

// ListTasks returns the current user's tasks filtered by the optional
// status, priority and search query parameters. Tasks past their deadline
// are marked Overdue as part of this read.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		OwnerID:  user.ID,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// UpdateTask applies a partial update. Fields absent from the body are left
// untouched.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.ValidationFailed(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string       `json:"title"`
		Description *string       `json:"description"`
		Priority    *string       `json:"priority"`
		Status      *string       `json:"status"`
		Deadline    *dto.Deadline `json:"deadline"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailedWithDetails(c, "Invalid request body", err.Error())
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.Deadline != nil {
		input.Deadline = &req.Deadline.Time
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}

	if _, err := h.taskService.UpdateTask(c.Request.Context(), taskID, user.ID, input); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task updated"})
}

// DeleteTask permanently deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.ValidationFailed(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, user.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted"})
}

// GenerateTasks creates tasks extracted from free text by the AI service
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required,max=10000"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailedWithDetails(c, "Invalid request body", err.Error())
		return
	}

	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), user.ID, req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateTasksResponse{
		Message: "Tasks generated",
		Created: len(tasks),
	})
}

// Dashboard returns the current user's productivity summary
func (h *TaskHandler) Dashboard(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	dashboard, err := h.taskService.Dashboard(c.Request.Context(), user.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardDTO(*dashboard))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.ValidationFailed(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAIUpstream):
		_ = c.Error(err)
		apierrors.BadGateway(c, "Failed to generate tasks")
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
