package app

import (
	httpserver "github.com/yungbote/taskflow-backend/internal/http"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *httpserver.Server {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return httpserver.NewServer(httpserver.RouterConfig{
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSAllowOrigins,
		Log:            log,
		AuthHandler:    h.Auth,
		AuthMiddleware: mw.Auth,
		ProjectHandler: h.Project,
		TaskHandler:    h.Task,
		AdminHandler:   h.Admin,
		EventsHandler:  h.Events,
		HealthHandler:  h.Health,
	})
}
