package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/taskflow-backend/internal/http/response"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/services"
)

type AdminHandler struct {
	log   *logger.Logger
	admin services.AdminService
}

func NewAdminHandler(log *logger.Logger, admin services.AdminService) *AdminHandler {
	return &AdminHandler{log: log.With("handler", "AdminHandler"), admin: admin}
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	users, err := h.admin.ListUsers(c.Request.Context(), handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// POST /api/admin/assign-admin
// body: { "email": "..." }
func (h *AdminHandler) AssignAdmin(c *gin.Context) {
	h.transition(c, h.admin.AssignAdmin)
}

// POST /api/admin/remove-admin
// body: { "email": "..." }
func (h *AdminHandler) RemoveAdmin(c *gin.Context) {
	h.transition(c, h.admin.RemoveAdmin)
}

func (h *AdminHandler) transition(c *gin.Context, apply func(ctx context.Context, email, actorHandle string) (*services.UserSummary, error)) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := apply(c.Request.Context(), req.Email, handle)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// DELETE /api/admin/users
// body: { "email": "..." }
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	handle, ok := actorHandle(c)
	if !ok {
		return
	}
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.admin.DeleteUser(c.Request.Context(), req.Email, handle); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
