package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/taskflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

const healthPath = "/healthcheck"

// RequestLogger writes one line per request once the handler chain returns.
// Health probes log at debug so they do not drown out API traffic.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		ctx := c.Request.Context()
		if td := ctxutil.GetTraceData(ctx); td != nil {
			kv = append(kv, "request_id", td.RequestID, "trace_id", td.TraceID)
		}
		// c.Request carries the auth middleware's context after c.Next.
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			kv = append(kv, "actor", rd.UserName, "user_id", rd.UserID)
		}
		if last := c.Errors.Last(); last != nil {
			kv = append(kv, "error", last.Err)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			reqLog.Error("request failed", kv...)
		case status >= 400:
			reqLog.Warn("request rejected", kv...)
		case route == healthPath:
			reqLog.Debug("request served", kv...)
		default:
			reqLog.Info("request served", kv...)
		}
	}
}
