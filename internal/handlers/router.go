package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/productivity-api/internal/middleware"
	"github.com/yukikurage/productivity-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterConfig holds what the HTTP layer needs to serve requests.
type RouterConfig struct {
	DB          *gorm.DB
	AuthService *services.AuthService
	TaskService *services.TaskService
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Metrics())

	authHandler := NewAuthHandler(cfg.AuthService)
	taskHandler := NewTaskHandler(cfg.TaskService)
	healthHandler := NewHealthHandler(cfg.DB)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes (public)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected routes
	authed := r.Group("")
	authed.Use(middleware.RequireAuth(cfg.AuthService))
	{
		authed.GET("/tasks", taskHandler.ListTasks)
		authed.POST("/tasks", taskHandler.CreateTask)
		authed.POST("/tasks/generate", taskHandler.GenerateTasks)
		authed.PUT("/tasks/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
		authed.DELETE("/tasks/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
		authed.GET("/dashboard", taskHandler.Dashboard)
	}

	return r
}
