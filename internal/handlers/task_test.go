package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/productivity-api/internal/constants"
	"github.com/yukikurage/productivity-api/internal/database"
	"github.com/yukikurage/productivity-api/internal/dto"
	apierrors "github.com/yukikurage/productivity-api/internal/errors"
	"github.com/yukikurage/productivity-api/internal/models"
	"github.com/yukikurage/productivity-api/internal/repository"
	"github.com/yukikurage/productivity-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubGenerator struct {
	tasks []services.GeneratedTask
	err   error
}

func (g *stubGenerator) GenerateTasksFromText(context.Context, string) ([]services.GeneratedTask, error) {
	return g.tasks, g.err
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db          *gorm.DB
	generator   *stubGenerator
	authService *services.AuthService
	router      *gin.Engine
	aliceToken  string
	bobToken    string
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = database.OpenInMemory()
	suite.Require().NoError(err)

	log := zap.NewNop()
	tokens := services.NewTokenService(services.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	suite.authService = services.NewAuthService(repository.NewUserRepository(suite.db), tokens, log)
	suite.generator = &stubGenerator{}
	taskService := services.NewTaskService(repository.NewTaskRepository(suite.db), suite.generator, log)

	suite.router = NewRouter(RouterConfig{
		DB:          suite.db,
		AuthService: suite.authService,
		TaskService: taskService,
		Logger:      log,
	})

	suite.aliceToken = suite.registerAndLogin("alice@example.com")
	suite.bobToken = suite.registerAndLogin("bob@example.com")
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) registerAndLogin(email string) string {
	credentials := map[string]string{"email": email, "password": "password"}

	w := suite.do(http.MethodPost, "/register", credentials, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/login", credentials, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TokenResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.AccessToken
}

func (suite *TaskHandlerTestSuite) do(method, url string, payload any, token string) *httptest.ResponseRecorder {
	return doJSON(suite.T(), suite.router, method, url, payload, token)
}

func (suite *TaskHandlerTestSuite) createTask(token, title string, deadline time.Time) {
	w := suite.do(http.MethodPost, "/tasks", map[string]any{
		"title":       title,
		"description": "",
		"priority":    "High",
		"deadline":    deadline.Format(time.RFC3339),
	}, token)
	suite.Require().Equal(http.StatusOK, w.Code)
}

func (suite *TaskHandlerTestSuite) list(token, query string) []dto.TaskDTO {
	w := suite.do(http.MethodGet, "/tasks"+query, nil, token)
	suite.Require().Equal(http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	return tasks
}

func (suite *TaskHandlerTestSuite) dashboard(token string) dto.DashboardDTO {
	w := suite.do(http.MethodGet, "/dashboard", nil, token)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.DashboardDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func taskURL(id uint64) string {
	return "/tasks/" + strconv.FormatUint(id, 10)
}

// TestCreateAndListTasks tests the create then list round trip
func (suite *TaskHandlerTestSuite) TestCreateAndListTasks() {
	deadline := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	suite.createTask(suite.aliceToken, "Write report", deadline)

	tasks := suite.list(suite.aliceToken, "")

	suite.Require().Len(tasks, 1)
	suite.Equal("Write report", tasks[0].Title)
	suite.Equal("", tasks[0].Description)
	suite.Equal("High", tasks[0].Priority)
	suite.Equal(models.TaskStatusPending, tasks[0].Status)
	suite.True(deadline.Equal(tasks[0].Deadline))
}

// TestListTasks_EmptyIsArray tests that an empty listing is [] rather than null
func (suite *TaskHandlerTestSuite) TestListTasks_EmptyIsArray() {
	w := suite.do(http.MethodGet, "/tasks", nil, suite.aliceToken)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq("[]", w.Body.String())
}

// TestListTasks_IsolatedPerOwner tests that users never see each other's tasks
func (suite *TaskHandlerTestSuite) TestListTasks_IsolatedPerOwner() {
	suite.createTask(suite.aliceToken, "Alice task", time.Now().Add(time.Hour))
	suite.createTask(suite.bobToken, "Bob task", time.Now().Add(time.Hour))

	tasks := suite.list(suite.bobToken, "")

	suite.Require().Len(tasks, 1)
	suite.Equal("Bob task", tasks[0].Title)
}

// TestListTasks_Filters tests status, priority and search query parameters
func (suite *TaskHandlerTestSuite) TestListTasks_Filters() {
	future := time.Now().Add(time.Hour)
	suite.createTask(suite.aliceToken, "Buy milk", future)
	suite.createTask(suite.aliceToken, "buy bread", future)

	w := suite.do(http.MethodPost, "/tasks", map[string]any{
		"title":       "Call plumber",
		"description": "leak",
		"priority":    "Low",
		"deadline":    future.Format(time.RFC3339),
	}, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	suite.Len(suite.list(suite.aliceToken, "?search=Buy"), 1)
	suite.Len(suite.list(suite.aliceToken, "?priority=Low"), 1)
	suite.Len(suite.list(suite.aliceToken, "?priority=High&search=bread"), 1)
	suite.Len(suite.list(suite.aliceToken, "?status=Completed"), 0)
	suite.Len(suite.list(suite.aliceToken, "?status=&priority="), 3)
}

// TestListTasks_MarksOverdue tests that listing promotes late tasks
func (suite *TaskHandlerTestSuite) TestListTasks_MarksOverdue() {
	suite.createTask(suite.aliceToken, "Late", time.Now().Add(-time.Hour))
	suite.createTask(suite.aliceToken, "On time", time.Now().Add(time.Hour))

	before := suite.dashboard(suite.aliceToken)
	suite.Zero(before.Overdue)

	tasks := suite.list(suite.aliceToken, "")
	suite.Require().Len(tasks, 2)
	suite.Equal(models.TaskStatusOverdue, tasks[0].Status)
	suite.Equal(models.TaskStatusPending, tasks[1].Status)

	after := suite.dashboard(suite.aliceToken)
	suite.Equal(int64(1), after.Overdue)
}

// TestCreateTask_InvalidRequest tests task creation with invalid bodies
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	deadline := time.Now().Add(time.Hour).Format(time.RFC3339)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"missing title", map[string]any{"description": "", "priority": "Low", "deadline": deadline}},
		{"blank title", map[string]any{"title": "   ", "description": "", "priority": "Low", "deadline": deadline}},
		{"missing description", map[string]any{"title": "T", "priority": "Low", "deadline": deadline}},
		{"missing priority", map[string]any{"title": "T", "description": "", "deadline": deadline}},
		{"missing deadline", map[string]any{"title": "T", "description": "", "priority": "Low"}},
		{"malformed deadline", map[string]any{"title": "T", "description": "", "priority": "Low", "deadline": "tomorrow"}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(http.MethodPost, "/tasks", tt.payload, suite.aliceToken)
			suite.Equal(http.StatusUnprocessableEntity, w.Code)
		})
	}

	suite.Empty(suite.list(suite.aliceToken, ""))
}

// TestCreateTask_EmptyPriority tests that an empty priority is accepted as given
func (suite *TaskHandlerTestSuite) TestCreateTask_EmptyPriority() {
	w := suite.do(http.MethodPost, "/tasks", map[string]any{
		"title":       "Unranked",
		"description": "",
		"priority":    "",
		"deadline":    time.Now().Add(time.Hour).Format(time.RFC3339),
	}, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	tasks := suite.list(suite.aliceToken, "")
	suite.Require().Len(tasks, 1)
	suite.Equal("", tasks[0].Priority)
}

// TestCreateTask_DeadlineWithoutZone tests that a zone-less deadline is read as UTC
func (suite *TaskHandlerTestSuite) TestCreateTask_DeadlineWithoutZone() {
	w := suite.do(http.MethodPost, "/tasks", map[string]any{
		"title":       "Naive",
		"description": "",
		"priority":    "Low",
		"deadline":    "2099-06-01T12:00:00",
	}, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	tasks := suite.list(suite.aliceToken, "")
	suite.Require().Len(tasks, 1)
	suite.True(time.Date(2099, 6, 1, 12, 0, 0, 0, time.UTC).Equal(tasks[0].Deadline))

	w = suite.do(http.MethodPut, taskURL(tasks[0].ID), map[string]any{"deadline": "2099-07-01T08:30:00"}, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.True(time.Date(2099, 7, 1, 8, 30, 0, 0, time.UTC).Equal(suite.list(suite.aliceToken, "")[0].Deadline))
}

// TestUpdateTask_Success tests a partial update
func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	suite.createTask(suite.aliceToken, "Draft", time.Now().Add(time.Hour))
	id := suite.list(suite.aliceToken, "")[0].ID

	w := suite.do(http.MethodPut, taskURL(id), map[string]any{"status": "Completed"}, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.MessageResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("Task updated", response.Message)

	tasks := suite.list(suite.aliceToken, "")
	suite.Equal("Draft", tasks[0].Title)
	suite.Equal("High", tasks[0].Priority)
	suite.Equal(models.TaskStatusCompleted, tasks[0].Status)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, id).Error)
	suite.NotNil(stored.UpdatedAt)
}

// TestUpdateTask_NullIsNotSupplied tests that explicit nulls leave fields untouched
func (suite *TaskHandlerTestSuite) TestUpdateTask_NullIsNotSupplied() {
	suite.createTask(suite.aliceToken, "Keep me", time.Now().Add(time.Hour))
	id := suite.list(suite.aliceToken, "")[0].ID

	w := suite.do(http.MethodPut, taskURL(id), map[string]any{"title": nil, "priority": "Low"}, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	tasks := suite.list(suite.aliceToken, "")
	suite.Equal("Keep me", tasks[0].Title)
	suite.Equal("Low", tasks[0].Priority)
}

// TestUpdateTask_InvalidRequest tests bad ids and blank titles
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidRequest() {
	suite.createTask(suite.aliceToken, "Draft", time.Now().Add(time.Hour))
	id := suite.list(suite.aliceToken, "")[0].ID

	w := suite.do(http.MethodPut, "/tasks/abc", map[string]any{"title": "x"}, suite.aliceToken)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodPut, taskURL(id), map[string]any{"title": ""}, suite.aliceToken)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidInput, decodeError(suite.T(), w).Code)

	w = suite.do(http.MethodPut, taskURL(id), map[string]any{"deadline": "next week"}, suite.aliceToken)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

// TestUpdateTask_OtherOwner tests that a foreign task looks absent
func (suite *TaskHandlerTestSuite) TestUpdateTask_OtherOwner() {
	suite.createTask(suite.aliceToken, "Private", time.Now().Add(time.Hour))
	id := suite.list(suite.aliceToken, "")[0].ID

	foreign := suite.do(http.MethodPut, taskURL(id), map[string]any{"title": "Hijacked"}, suite.bobToken)
	missing := suite.do(http.MethodPut, taskURL(id+100), map[string]any{"title": "Hijacked"}, suite.bobToken)

	suite.Equal(http.StatusNotFound, foreign.Code)
	suite.Equal(http.StatusNotFound, missing.Code)
	suite.Equal(decodeError(suite.T(), missing), decodeError(suite.T(), foreign))
	suite.Equal("Private", suite.list(suite.aliceToken, "")[0].Title)
}

// TestDeleteTask_Success tests successful task deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	suite.createTask(suite.aliceToken, "Temporary", time.Now().Add(time.Hour))
	id := suite.list(suite.aliceToken, "")[0].ID

	w := suite.do(http.MethodDelete, taskURL(id), nil, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Task deleted")

	suite.Empty(suite.list(suite.aliceToken, ""))

	w = suite.do(http.MethodDelete, taskURL(id), nil, suite.aliceToken)
	suite.Equal(http.StatusNotFound, w.Code)
}

// TestDeleteTask_OtherOwner tests deletion of another user's task
func (suite *TaskHandlerTestSuite) TestDeleteTask_OtherOwner() {
	suite.createTask(suite.aliceToken, "Private", time.Now().Add(time.Hour))
	id := suite.list(suite.aliceToken, "")[0].ID

	w := suite.do(http.MethodDelete, taskURL(id), nil, suite.bobToken)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Len(suite.list(suite.aliceToken, ""), 1)
}

// TestDashboard tests the productivity summary
func (suite *TaskHandlerTestSuite) TestDashboard() {
	suite.Equal(dto.DashboardDTO{}, suite.dashboard(suite.aliceToken))

	for _, title := range []string{"a", "b", "c"} {
		suite.createTask(suite.aliceToken, title, time.Now().Add(time.Hour))
	}
	tasks := suite.list(suite.aliceToken, "")
	w := suite.do(http.MethodPut, taskURL(tasks[0].ID), map[string]any{"status": "Completed"}, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	response := suite.dashboard(suite.aliceToken)

	suite.Equal(int64(3), response.TotalTasks)
	suite.Equal(int64(1), response.Completed)
	suite.Equal(int64(0), response.Overdue)
	suite.Equal(33.33, response.CompletionRate)
	suite.Equal(dto.DashboardDTO{}, suite.dashboard(suite.bobToken))
}

// TestGenerateTasks_Success tests creating tasks from free text
func (suite *TaskHandlerTestSuite) TestGenerateTasks_Success() {
	suite.generator.tasks = []services.GeneratedTask{
		{Title: "Buy milk", Deadline: time.Now().Add(time.Hour).UTC().Format(time.RFC3339)},
		{Title: "No deadline"},
	}

	w := suite.do(http.MethodPost, "/tasks/generate", map[string]string{"text": "buy milk soon"}, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.GenerateTasksResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(1, response.Created)

	tasks := suite.list(suite.aliceToken, "")
	suite.Require().Len(tasks, 1)
	suite.Equal(constants.DefaultTaskPriority, tasks[0].Priority)
}

// TestGenerateTasks_Errors tests the error mapping of task generation
func (suite *TaskHandlerTestSuite) TestGenerateTasks_Errors() {
	w := suite.do(http.MethodPost, "/tasks/generate", map[string]string{}, suite.aliceToken)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	suite.generator.tasks = nil
	w = suite.do(http.MethodPost, "/tasks/generate", map[string]string{"text": "nothing"}, suite.aliceToken)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	suite.generator.err = errors.New("rate limited")
	w = suite.do(http.MethodPost, "/tasks/generate", map[string]string{"text": "anything"}, suite.aliceToken)
	suite.Equal(http.StatusBadGateway, w.Code)
	suite.Equal(apierrors.ErrCodeOperationFailed, decodeError(suite.T(), w).Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func TestGenerateTasks_NotConfigured(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(context.Background(), services.RegisterInput{Email: "a@example.com", Password: "password"})
	assert.NoError(t, err)
	token, err := env.tokens.Issue("a@example.com")
	assert.NoError(t, err)

	w := doJSON(t, env.router, http.MethodPost, "/tasks/generate", map[string]string{"text": "buy milk"}, token)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTaskHandler_MissingUserInContext(t *testing.T) {
	handler := NewTaskHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/tasks", nil)

	handler.ListTasks(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
