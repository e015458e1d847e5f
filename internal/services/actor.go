package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/taskflow-backend/internal/access"
	"github.com/yungbote/taskflow-backend/internal/data/repos"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/realtime"
	"github.com/yungbote/taskflow-backend/internal/realtime/bus"
)

type actor struct {
	User    *domain.User
	IsAdmin bool
}

func (a *actor) ID() uuid.UUID { return a.User.ID }

// resolveActor loads the caller by handle. The admin flag is read from the
// role table inside the caller's transaction, never from a cached role set.
func resolveActor(dbc dbctx.Context, identity IdentityDirectory, op, handle string) (*actor, error) {
	u, err := identity.FindByHandle(dbc, handle)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ActorNotFound(op, handle)
	}
	admin, err := identity.HasRole(dbc, u.ID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &actor{User: u, IsAdmin: admin}, nil
}

func projectFacts(a *actor, p *domain.Project) access.Facts {
	if p == nil {
		return access.Facts{IsAdmin: a.IsAdmin}
	}
	return access.Facts{
		Exists:   true,
		IsAdmin:  a.IsAdmin,
		IsOwner:  p.IsOwner(a.ID()),
		IsMember: p.HasMember(a.ID()),
	}
}

func taskFacts(a *actor, t *domain.ProjectTask) access.Facts {
	if t == nil || t.Project == nil {
		return access.Facts{IsAdmin: a.IsAdmin}
	}
	f := projectFacts(a, t.Project)
	f.IsAssignee = t.IsAssigned(a.ID())
	return f
}

// ActivityLog persists change entries inside the write transaction and
// publishes them once the transaction has committed.
type ActivityLog struct {
	log  *logger.Logger
	repo repos.ActivityRepo
	bus  bus.Bus
}

func NewActivityLog(log *logger.Logger, repo repos.ActivityRepo, b bus.Bus) *ActivityLog {
	return &ActivityLog{log: log.With("service", "ActivityLog"), repo: repo, bus: b}
}

func (l *ActivityLog) entry(projectID uuid.UUID, taskID *uuid.UUID, actorID uuid.UUID, action string, details map[string]any) *domain.ActivityEntry {
	raw, err := json.Marshal(details)
	if err != nil || details == nil {
		raw = []byte("{}")
	}
	return &domain.ActivityEntry{
		ID:        uuid.New(),
		ProjectID: projectID,
		TaskID:    taskID,
		ActorID:   actorID,
		Action:    action,
		Details:   datatypes.JSON(raw),
	}
}

func (l *ActivityLog) record(dbc dbctx.Context, e *domain.ActivityEntry) error {
	if l == nil || l.repo == nil {
		return nil
	}
	_, err := l.repo.Create(dbc, []*domain.ActivityEntry{e})
	return err
}

// publish never fails the caller; bus errors are logged.
func (l *ActivityLog) publish(ctx context.Context, entries ...*domain.ActivityEntry) {
	if l == nil || l.bus == nil {
		return
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		if err := l.bus.Publish(ctx, realtime.EventFromActivity(e)); err != nil {
			l.log.Warn("publish activity failed", "action", e.Action, "project_id", e.ProjectID, "error", err)
		}
	}
}

func userIDs(users []*domain.User) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func emailsOf(users []*domain.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Email)
	}
	return out
}
