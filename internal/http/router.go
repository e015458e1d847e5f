package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/taskflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/taskflow-backend/internal/http/middleware"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string
	Log         *logger.Logger

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	ProjectHandler *httpH.ProjectHandler
	TaskHandler    *httpH.TaskHandler
	AdminHandler   *httpH.AdminHandler
	EventsHandler  *httpH.EventsHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.POST("/projects", cfg.ProjectHandler.Create)
			protected.GET("/projects", cfg.ProjectHandler.List)
			protected.GET("/projects/:id", cfg.ProjectHandler.Get)
			protected.PUT("/projects/:id", cfg.ProjectHandler.Update)
			protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
			protected.POST("/projects/:id/members", cfg.ProjectHandler.AddMembers)
			protected.DELETE("/projects/:id/members", cfg.ProjectHandler.RemoveMembers)
			protected.GET("/projects/:id/users", cfg.ProjectHandler.ListUsers)
			protected.GET("/projects/:id/activity", cfg.ProjectHandler.ListActivity)
		}
		if cfg.EventsHandler != nil {
			protected.GET("/projects/:id/events", cfg.EventsHandler.Stream)
		}

		// Tasks
		if cfg.TaskHandler != nil {
			protected.POST("/projects/:id/tasks", cfg.TaskHandler.Create)
			protected.GET("/projects/:id/tasks", cfg.TaskHandler.ListByProject)
			protected.GET("/tasks", cfg.TaskHandler.ListMine)
			protected.GET("/tasks/:id", cfg.TaskHandler.Get)
			protected.PUT("/tasks/:id", cfg.TaskHandler.Update)
			protected.DELETE("/tasks/:id", cfg.TaskHandler.Delete)
			protected.POST("/tasks/:id/assignees", cfg.TaskHandler.AddAssignees)
			protected.DELETE("/tasks/:id/assignees", cfg.TaskHandler.RemoveAssignees)
		}

		// Admin
		if cfg.AdminHandler != nil {
			protected.GET("/admin/users", cfg.AdminHandler.ListUsers)
			protected.POST("/admin/assign-admin", cfg.AdminHandler.AssignAdmin)
			protected.POST("/admin/remove-admin", cfg.AdminHandler.RemoveAdmin)
			protected.DELETE("/admin/users", cfg.AdminHandler.DeleteUser)
		}
	}

	return r
}
