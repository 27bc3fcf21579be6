package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"task-board/backend/internal/middleware"
	"task-board/backend/internal/services"
)

type RouterConfig struct {
	AuthHandler    *AuthHandler
	TaskHandler    *TaskHandler
	TokenService   services.TokenService
	AllowedOrigins []string
}

// NewRouter wires the HTTP surface: open auth endpoints, and task endpoints
// behind the bearer-token middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
		router.Use(cors.New(corsConfig))
	}

	auth := router.Group("/auth")
	{
		auth.POST("/signup", cfg.AuthHandler.Signup)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.GET("/me", middleware.Auth(cfg.TokenService), cfg.AuthHandler.Me)
	}

	tasks := router.Group("/tasks", middleware.Auth(cfg.TokenService))
	{
		tasks.GET("", cfg.TaskHandler.ListTasks)
		tasks.POST("", cfg.TaskHandler.CreateTask)
		tasks.PUT("/:id", cfg.TaskHandler.UpdateTask)
		tasks.DELETE("/:id", cfg.TaskHandler.DeleteTask)
	}

	return router
}
