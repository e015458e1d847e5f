package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/taskflow-backend/internal/access"
	"github.com/yungbote/taskflow-backend/internal/data/aggregates"
	"github.com/yungbote/taskflow-backend/internal/data/repos"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type AdminService interface {
	AssignAdmin(ctx context.Context, email, actorHandle string) (*UserSummary, error)
	RemoveAdmin(ctx context.Context, email, actorHandle string) (*UserSummary, error)
	DeleteUser(ctx context.Context, email, actorHandle string) error
	ListUsers(ctx context.Context, actorHandle string) ([]*UserSummary, error)
}

type adminService struct {
	deps        aggregates.BaseDeps
	log         *logger.Logger
	identity    IdentityDirectory
	projectRepo repos.ProjectRepo
	taskRepo    repos.TaskRepo
}

func NewAdminService(
	deps aggregates.BaseDeps,
	baseLog *logger.Logger,
	identity IdentityDirectory,
	projectRepo repos.ProjectRepo,
	taskRepo repos.TaskRepo,
) AdminService {
	return &adminService{
		deps:        deps,
		log:         baseLog.With("service", "AdminService"),
		identity:    identity,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

func (s *adminService) AssignAdmin(ctx context.Context, email, actorHandle string) (*UserSummary, error) {
	const op = "admin.assign_admin"
	return s.transition(ctx, op, email, actorHandle, domain.RoleUser, domain.RoleAdmin)
}

func (s *adminService) RemoveAdmin(ctx context.Context, email, actorHandle string) (*UserSummary, error) {
	const op = "admin.remove_admin"
	return s.transition(ctx, op, email, actorHandle, domain.RoleAdmin, domain.RoleUser)
}

// transition swaps the target's from role for to inside one transaction.
func (s *adminService) transition(ctx context.Context, op, email, actorHandle, from, to string) (*UserSummary, error) {
	var out *UserSummary
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		if _, err := s.requireAdmin(dbc, op, actorHandle); err != nil {
			return err
		}
		target, err := s.target(dbc, op, email)
		if err != nil {
			return err
		}
		targetIsAdmin, err := s.identity.HasRole(dbc, target.ID, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if to == domain.RoleAdmin && targetIsAdmin {
			return domain.Validation(op, fmt.Sprintf("user with email %s is already an admin", target.Email))
		}
		if from == domain.RoleAdmin && !targetIsAdmin {
			return domain.Validation(op, fmt.Sprintf("user with email %s is not an admin", target.Email))
		}
		if err := s.identity.TransitionRole(dbc, target.ID, from, to); err != nil {
			return err
		}
		reloaded, err := s.identity.FindByIDs(dbc, userIDs([]*domain.User{target}))
		if err != nil {
			return err
		}
		if len(reloaded) == 0 {
			return domain.NotFound(op, "user")
		}
		out = newUserSummary(reloaded[0])
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("role changed", "user_id", out.ID, "from", from, "to", to)
	return out, nil
}

// DeleteUser refuses users that still own projects. Memberships and
// assignments are removed with the user.
func (s *adminService) DeleteUser(ctx context.Context, email, actorHandle string) error {
	const op = "admin.delete_user"
	return aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, err := s.requireAdmin(dbc, op, actorHandle)
		if err != nil {
			return err
		}
		target, err := s.target(dbc, op, email)
		if err != nil {
			return err
		}
		if target.ID == a.ID() {
			return domain.Validation(op, "admins cannot delete themselves")
		}
		owned, err := s.projectRepo.CountOwnedBy(dbc, target.ID)
		if err != nil {
			return err
		}
		if owned > 0 {
			return domain.Conflict(op, fmt.Sprintf("user with email %s still owns %d project(s)", target.Email, owned))
		}
		if err := s.taskRepo.RemoveUserFromAll(dbc, target.ID); err != nil {
			return fmt.Errorf("remove assignments: %w", err)
		}
		if err := s.projectRepo.RemoveUserFromAll(dbc, target.ID); err != nil {
			return fmt.Errorf("remove memberships: %w", err)
		}
		if err := s.identity.DeleteUser(dbc, target.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		s.log.Info("user deleted", "user_id", target.ID, "actor_id", a.ID())
		return nil
	})
}

func (s *adminService) ListUsers(ctx context.Context, actorHandle string) ([]*UserSummary, error) {
	const op = "admin.list_users"
	var out []*UserSummary
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		if _, err := s.requireAdmin(dbc, op, actorHandle); err != nil {
			return err
		}
		users, err := s.identity.ListAllUsers(dbc)
		if err != nil {
			return err
		}
		out = make([]*UserSummary, 0, len(users))
		for _, u := range users {
			out = append(out, newUserSummary(u))
		}
		return nil
	})
	return out, err
}

func (s *adminService) requireAdmin(dbc dbctx.Context, op, actorHandle string) (*actor, error) {
	a, err := resolveActor(dbc, s.identity, op, actorHandle)
	if err != nil {
		return nil, err
	}
	if err := access.Err(access.CanAdministerUsers(access.Facts{IsAdmin: a.IsAdmin}), op, "user"); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *adminService) target(dbc dbctx.Context, op, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Validation(op, "email is required")
	}
	u, err := s.identity.FindByEmail(dbc, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.MemberNotFound(op, email)
	}
	return u, nil
}
