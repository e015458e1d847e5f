package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/taskflow-backend/internal/http/response"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/services"
)

type TaskHandler struct {
	log   *logger.Logger
	tasks services.TaskService
}

func NewTaskHandler(log *logger.Logger, tasks services.TaskService) *TaskHandler {
	return &TaskHandler{log: log.With("handler", "TaskHandler"), tasks: tasks}
}

// POST /api/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	var spec services.TaskSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), projectID, spec, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"task": task})
}

// GET /api/projects/:id/tasks
func (h *TaskHandler) ListByProject(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tasks": tasks})
}

// GET /api/tasks
func (h *TaskHandler) ListMine(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListForActor(c.Request.Context(), handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tasks": tasks})
}

// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_task_id")
	if !ok {
		return
	}
	task, err := h.tasks.GetByID(c.Request.Context(), id, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}

// PUT /api/tasks/:id
// Omitting assignee_emails leaves assignees unchanged.
func (h *TaskHandler) Update(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_task_id")
	if !ok {
		return
	}
	var spec services.TaskSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), id, spec, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_task_id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id, handle); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/tasks/:id/assignees
func (h *TaskHandler) AddAssignees(c *gin.Context) {
	h.changeAssignees(c, h.tasks.AddAssignees)
}

// DELETE /api/tasks/:id/assignees
func (h *TaskHandler) RemoveAssignees(c *gin.Context) {
	h.changeAssignees(c, h.tasks.RemoveAssignees)
}

func (h *TaskHandler) changeAssignees(c *gin.Context, apply memberFunc[*services.TaskView]) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_task_id")
	if !ok {
		return
	}
	var req emailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	task, err := apply(c.Request.Context(), id, req.Emails, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}
