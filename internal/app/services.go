package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/data/aggregates"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/realtime/bus"
	"github.com/yungbote/taskflow-backend/internal/services"
)

type Services struct {
	Identity services.IdentityDirectory
	Activity *services.ActivityLog
	Auth     services.AuthService
	Projects services.ProjectService
	Tasks    services.TaskService
	Admin    services.AdminService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, eventBus bus.Bus) Services {
	log.Info("Wiring services...")
	deps := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: aggregates.NewGormTxRunner(db),
		Hooks:  aggregates.NewLogHooks(log),
	}
	identity := services.NewIdentityDirectory(log, r.User, r.UserRole, r.UserToken)
	activity := services.NewActivityLog(log, r.Activity, eventBus)
	return Services{
		Identity: identity,
		Activity: activity,
		Auth:     services.NewAuthService(deps, log, identity, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Projects: services.NewProjectService(deps, log, identity, r.Project, activity),
		Tasks:    services.NewTaskService(deps, log, identity, r.Project, r.Task, activity),
		Admin:    services.NewAdminService(deps, log, identity, r.Project, r.Task),
	}
}
