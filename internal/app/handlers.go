package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/http/handlers"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/realtime"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Project *handlers.ProjectHandler
	Task    *handlers.TaskHandler
	Admin   *handlers.AdminHandler
	Events  *handlers.EventsHandler
	Health  *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    handlers.NewAuthHandler(s.Auth),
		Project: handlers.NewProjectHandler(log, s.Projects),
		Task:    handlers.NewTaskHandler(log, s.Tasks),
		Admin:   handlers.NewAdminHandler(log, s.Admin),
		Events:  handlers.NewEventsHandler(log, hub, s.Projects),
		Health:  handlers.NewHealthHandler(log, pingDB(db)),
	}
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
