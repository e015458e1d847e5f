package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/taskflow-backend/internal/http/response"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/services"
)

type ProjectHandler struct {
	log      *logger.Logger
	projects services.ProjectService
}

func NewProjectHandler(log *logger.Logger, projects services.ProjectService) *ProjectHandler {
	return &ProjectHandler{log: log.With("handler", "ProjectHandler"), projects: projects}
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	var spec services.ProjectSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	project, err := h.projects.Create(c.Request.Context(), spec, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"project": project})
}

// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	projects, err := h.projects.ListForUser(c.Request.Context(), handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": projects})
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	project, err := h.projects.GetByID(c.Request.Context(), id, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": project})
}

// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	var spec services.ProjectSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	project, err := h.projects.Update(c.Request.Context(), id, spec, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": project})
}

// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), id, handle); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/projects/:id/members
// body: { "emails": ["..."] }
func (h *ProjectHandler) AddMembers(c *gin.Context) {
	h.changeMembers(c, h.projects.AddMembers)
}

// DELETE /api/projects/:id/members
// body: { "emails": ["..."] }
func (h *ProjectHandler) RemoveMembers(c *gin.Context) {
	h.changeMembers(c, h.projects.RemoveMembers)
}

func (h *ProjectHandler) changeMembers(c *gin.Context, apply memberFunc[*services.ProjectView]) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	var req emailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	project, err := apply(c.Request.Context(), id, req.Emails, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": project})
}

// GET /api/projects/:id/users
func (h *ProjectHandler) ListUsers(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	users, err := h.projects.ListMembers(c.Request.Context(), id, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// GET /api/projects/:id/activity
func (h *ProjectHandler) ListActivity(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid_project_id")
	if !ok {
		return
	}
	entries, err := h.projects.ListActivity(c.Request.Context(), id, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activity": entries})
}
