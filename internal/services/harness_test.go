package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/data/aggregates"
	"github.com/yungbote/taskflow-backend/internal/data/repos"
	"github.com/yungbote/taskflow-backend/internal/data/repos/testutil"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/realtime"
)

type recordingBus struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (b *recordingBus) Publish(_ context.Context, ev realtime.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) StartForwarder(context.Context, func(realtime.Event)) error { return nil }
func (b *recordingBus) Close() error                                             { return nil }

func (b *recordingBus) actions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Action)
	}
	return out
}

type harness struct {
	ctx      context.Context
	db       *gorm.DB
	bus      *recordingBus
	identity IdentityDirectory
	projects ProjectService
	tasks    TaskService
	admin    AdminService
	auth     AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	roleRepo := repos.NewUserRoleRepo(db, log)
	tokenRepo := repos.NewUserTokenRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	taskRepo := repos.NewTaskRepo(db, log)
	activityRepo := repos.NewActivityRepo(db, log)

	deps := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewLogHooks(log)}
	b := &recordingBus{}
	identity := NewIdentityDirectory(log, userRepo, roleRepo, tokenRepo)
	activity := NewActivityLog(log, activityRepo, b)

	return &harness{
		ctx:      context.Background(),
		db:       db,
		bus:      b,
		identity: identity,
		projects: NewProjectService(deps, log, identity, projectRepo, activity),
		tasks:    NewTaskService(deps, log, identity, projectRepo, taskRepo, activity),
		admin:    NewAdminService(deps, log, identity, projectRepo, taskRepo),
		auth:     NewAuthService(deps, log, identity, userRepo, tokenRepo, "test-secret", time.Minute, time.Hour),
	}
}

func (h *harness) user(t *testing.T, handle string) *domain.User {
	t.Helper()
	return testutil.SeedUser(t, h.ctx, h.db, handle, domain.RoleUser)
}

func (h *harness) adminUser(t *testing.T, handle string) *domain.User {
	t.Helper()
	return testutil.SeedUser(t, h.ctx, h.db, handle, domain.RoleAdmin)
}

func (h *harness) project(t *testing.T, owner *domain.User, name string, members ...*domain.User) *ProjectView {
	t.Helper()
	spec := projectSpec(name)
	for _, m := range members {
		spec.MemberEmails = append(spec.MemberEmails, m.Email)
	}
	v, err := h.projects.Create(h.ctx, spec, owner.UserName)
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return v
}

func (h *harness) task(t *testing.T, owner *domain.User, projectID uuid.UUID, name string, assignees ...*domain.User) *TaskView {
	t.Helper()
	spec := TaskSpec{Name: name}
	for _, a := range assignees {
		spec.AssigneeEmails = append(spec.AssigneeEmails, a.Email)
	}
	v, err := h.tasks.Create(h.ctx, projectID, spec, owner.UserName)
	if err != nil {
		t.Fatalf("create task %s: %v", name, err)
	}
	return v
}

func dbcOf(h *harness) dbctx.Context {
	return dbctx.Context{Ctx: h.ctx}
}

func projectSpec(name string) ProjectSpec {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return ProjectSpec{
		Name:        name,
		Description: "work for " + name,
		StartDate:   start,
		EndDate:     start.Add(14 * 24 * time.Hour),
	}
}

func wantCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := domain.CodeOf(err); got != code {
		t.Fatalf("expected code %s, got %s (%v)", code, got, err)
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
