package aggregates

import (
	"time"

	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

// Hooks observes aggregate operations.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}

type logHooks struct {
	log *logger.Logger
}

// NewLogHooks reports every operation at debug level and failures at warn.
func NewLogHooks(log *logger.Logger) Hooks {
	if log == nil {
		return noopHooks{}
	}
	return &logHooks{log: log.With("component", "AggregateHooks")}
}

func (h *logHooks) ObserveOperation(name, status string, dur time.Duration) {
	switch status {
	case "success":
		h.log.Debug("aggregate write", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	case "internal":
		h.log.Error("aggregate write failed", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	default:
		h.log.Info("aggregate write rejected", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	}
}

func (h *logHooks) IncConflict(name string) {
	h.log.Warn("aggregate conflict", "op", name)
}
