package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type HealthHandler struct {
	log  *logger.Logger
	ping func(ctx context.Context) error
}

// NewHealthHandler reports unhealthy when ping fails. A nil ping is always healthy.
func NewHealthHandler(log *logger.Logger, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{log: log.With("handler", "HealthHandler"), ping: ping}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.log.Warn("health check failed", "error", err)
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
