package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/taskflow-backend/internal/http/response"
	"github.com/yungbote/taskflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/realtime"
	"github.com/yungbote/taskflow-backend/internal/services"
)

type EventsHandler struct {
	log      *logger.Logger
	hub      *realtime.Hub
	projects services.ProjectService
}

func NewEventsHandler(log *logger.Logger, hub *realtime.Hub, projects services.ProjectService) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub, projects: projects}
}

// GET /api/projects/:id/events
// Streams the project's activity as server-sent events. Read access is
// checked once when the stream opens.
func (h *EventsHandler) Stream(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	if _, err := h.projects.GetByID(c.Request.Context(), projectID, handle); err != nil {
		response.RespondErr(c, err)
		return
	}

	rd := ctxutil.GetRequestData(c.Request.Context())
	client := h.hub.Subscribe(rd.UserID, projectID)
	defer h.hub.Unsubscribe(client)
	h.log.Info("event stream open", "project_id", projectID, "user_id", rd.UserID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
