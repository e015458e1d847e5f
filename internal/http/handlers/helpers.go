package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/http/response"
	"github.com/yungbote/taskflow-backend/internal/platform/ctxutil"
)

// actorHandle returns the authenticated caller's handle, writing a 401 when
// the request carries none.
func actorHandle(c *gin.Context) (string, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil || rd.UserName == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("not authenticated"))
		return "", false
	}
	return rd.UserName, true
}

func pathID(c *gin.Context, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		if err == nil {
			err = errors.New("id is required")
		}
		response.RespondError(c, http.StatusBadRequest, code, err)
		return uuid.Nil, false
	}
	return id, true
}

type emailsRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type memberFunc[V any] func(ctx context.Context, id uuid.UUID, emails []string, actorHandle string) (V, error)
