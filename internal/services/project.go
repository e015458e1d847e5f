package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/access"
	"github.com/yungbote/taskflow-backend/internal/data/aggregates"
	"github.com/yungbote/taskflow-backend/internal/data/repos"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

const activityPageSize = 100

type ProjectService interface {
	Create(ctx context.Context, spec ProjectSpec, actorHandle string) (*ProjectView, error)
	Update(ctx context.Context, projectID uuid.UUID, spec ProjectSpec, actorHandle string) (*ProjectView, error)
	Delete(ctx context.Context, projectID uuid.UUID, actorHandle string) error
	GetByID(ctx context.Context, projectID uuid.UUID, actorHandle string) (*ProjectView, error)
	ListForUser(ctx context.Context, actorHandle string) ([]*ProjectView, error)
	AddMembers(ctx context.Context, projectID uuid.UUID, emails []string, actorHandle string) (*ProjectView, error)
	RemoveMembers(ctx context.Context, projectID uuid.UUID, emails []string, actorHandle string) (*ProjectView, error)
	ListMembers(ctx context.Context, projectID uuid.UUID, actorHandle string) ([]*UserSummary, error)
	ListActivity(ctx context.Context, projectID uuid.UUID, actorHandle string) ([]*domain.ActivityEntry, error)
}

type projectService struct {
	deps        aggregates.BaseDeps
	log         *logger.Logger
	identity    IdentityDirectory
	projectRepo repos.ProjectRepo
	activity    *ActivityLog
}

func NewProjectService(
	deps aggregates.BaseDeps,
	baseLog *logger.Logger,
	identity IdentityDirectory,
	projectRepo repos.ProjectRepo,
	activity *ActivityLog,
) ProjectService {
	serviceLog := baseLog.With("service", "ProjectService")
	return &projectService{
		deps:        deps,
		log:         serviceLog,
		identity:    identity,
		projectRepo: projectRepo,
		activity:    activity,
	}
}

func (s *projectService) Create(ctx context.Context, spec ProjectSpec, actorHandle string) (*ProjectView, error) {
	const op = "project.create"
	var (
		created *domain.Project
		entry   *domain.ActivityEntry
	)
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, err := resolveActor(dbc, s.identity, op, actorHandle)
		if err != nil {
			return err
		}
		if err := access.Err(access.CanCreateProject(access.Facts{IsAdmin: a.IsAdmin}), op, "project"); err != nil {
			return err
		}
		spec.normalize()
		if err := validateInput(op, spec); err != nil {
			return err
		}
		members, err := s.identity.ResolveEmails(dbc, op, spec.MemberEmails)
		if err != nil {
			return err
		}

		p := &domain.Project{
			ID:          uuid.New(),
			Name:        spec.Name,
			Description: spec.Description,
			StartDate:   spec.StartDate,
			EndDate:     spec.EndDate,
			OwnerID:     a.ID(),
		}
		for _, id := range explicitMembers(a.ID(), members) {
			p.Members = append(p.Members, domain.ProjectMember{ProjectID: p.ID, UserID: id})
		}
		if err := s.projectRepo.Create(dbc, p); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		p.Owner = a.User
		created = p

		entry = s.activity.entry(p.ID, nil, a.ID(), domain.ActionProjectCreated, map[string]any{
			"name":    p.Name,
			"members": emailsOf(members),
		})
		return s.activity.record(dbc, entry)
	})
	if err != nil {
		return nil, err
	}
	s.activity.publish(ctx, entry)
	s.log.Info("project created", "project_id", created.ID, "owner_id", created.OwnerID)
	return newProjectView(created), nil
}

func (s *projectService) Update(ctx context.Context, projectID uuid.UUID, spec ProjectSpec, actorHandle string) (*ProjectView, error) {
	const op = "project.update"
	var (
		updated *domain.Project
		entry   *domain.ActivityEntry
	)
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, p, err := s.load(dbc, op, projectID, actorHandle, access.CanUpdateProject)
		if err != nil {
			return err
		}
		spec.normalize()
		if err := validateInput(op, spec); err != nil {
			return err
		}
		members, err := s.identity.ResolveEmails(dbc, op, spec.MemberEmails)
		if err != nil {
			return err
		}

		p.Name = spec.Name
		p.Description = spec.Description
		p.StartDate = spec.StartDate
		p.EndDate = spec.EndDate
		if err := s.projectRepo.Update(dbc, p); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		if err := s.projectRepo.ReplaceMembers(dbc, p.ID, explicitMembers(p.OwnerID, members)); err != nil {
			return fmt.Errorf("replace members: %w", err)
		}

		entry = s.activity.entry(p.ID, nil, a.ID(), domain.ActionProjectUpdated, map[string]any{
			"name":    p.Name,
			"members": emailsOf(members),
		})
		if err := s.activity.record(dbc, entry); err != nil {
			return err
		}
		updated, err = s.projectRepo.GetByID(dbc, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.activity.publish(ctx, entry)
	return newProjectView(updated), nil
}

func (s *projectService) Delete(ctx context.Context, projectID uuid.UUID, actorHandle string) error {
	const op = "project.delete"
	var entry *domain.ActivityEntry
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, p, err := s.load(dbc, op, projectID, actorHandle, access.CanDeleteProject)
		if err != nil {
			return err
		}
		if !a.IsAdmin {
			owned, err := s.projectRepo.ExistsOwnedBy(dbc, p.ID, a.ID())
			if err != nil {
				return err
			}
			if !owned {
				return domain.Forbidden(op)
			}
		}
		if err := s.projectRepo.Delete(dbc, p.ID); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		// The project's activity is deleted with it, so this entry is only published.
		entry = s.activity.entry(p.ID, nil, a.ID(), domain.ActionProjectDeleted, map[string]any{"name": p.Name})
		entry.CreatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return err
	}
	s.activity.publish(ctx, entry)
	s.log.Info("project deleted", "project_id", projectID)
	return nil
}

func (s *projectService) GetByID(ctx context.Context, projectID uuid.UUID, actorHandle string) (*ProjectView, error) {
	const op = "project.get"
	var view *ProjectView
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		_, p, err := s.load(dbc, op, projectID, actorHandle, access.CanReadProject)
		if err != nil {
			return err
		}
		if p.Owner == nil {
			return domain.NotFound(op, "project owner")
		}
		view = newProjectView(p)
		return nil
	})
	return view, err
}

func (s *projectService) ListForUser(ctx context.Context, actorHandle string) ([]*ProjectView, error) {
	const op = "project.list"
	var views []*ProjectView
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		a, err := resolveActor(dbc, s.identity, op, actorHandle)
		if err != nil {
			return err
		}
		var projects []*domain.Project
		if a.IsAdmin {
			projects, err = s.projectRepo.ListAll(dbc)
		} else {
			projects, err = s.projectRepo.ListForUser(dbc, a.ID())
		}
		if err != nil {
			return err
		}
		views = make([]*ProjectView, 0, len(projects))
		for _, p := range projects {
			views = append(views, newProjectView(p))
		}
		return nil
	})
	return views, err
}

// AddMembers adds every email as an explicit member. Existing members and the
// owner are skipped. Nothing is written unless every email resolves.
func (s *projectService) AddMembers(ctx context.Context, projectID uuid.UUID, emails []string, actorHandle string) (*ProjectView, error) {
	const op = "project.add_members"
	var (
		updated *domain.Project
		entry   *domain.ActivityEntry
	)
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, p, err := s.load(dbc, op, projectID, actorHandle, access.CanManageProjectMembers)
		if err != nil {
			return err
		}
		if len(emails) == 0 {
			return domain.Validation(op, "emails are required")
		}
		users, err := s.identity.ResolveEmails(dbc, op, emails)
		if err != nil {
			return err
		}
		var toAdd []*domain.User
		for _, u := range users {
			if p.IsOwner(u.ID) || p.HasMember(u.ID) {
				continue
			}
			toAdd = append(toAdd, u)
		}
		if err := s.projectRepo.AddMembers(dbc, p.ID, userIDs(toAdd)); err != nil {
			return fmt.Errorf("add members: %w", err)
		}
		if len(toAdd) > 0 {
			entry = s.activity.entry(p.ID, nil, a.ID(), domain.ActionProjectMembersAdded, map[string]any{"emails": emailsOf(toAdd)})
			if err := s.activity.record(dbc, entry); err != nil {
				return err
			}
		}
		updated, err = s.projectRepo.GetByID(dbc, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.activity.publish(ctx, entry)
	return newProjectView(updated), nil
}

// RemoveMembers removes every email from the explicit membership. Any email
// that is not a member, or names the owner, fails the whole call.
func (s *projectService) RemoveMembers(ctx context.Context, projectID uuid.UUID, emails []string, actorHandle string) (*ProjectView, error) {
	const op = "project.remove_members"
	var (
		updated *domain.Project
		entry   *domain.ActivityEntry
	)
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, p, err := s.load(dbc, op, projectID, actorHandle, access.CanManageProjectMembers)
		if err != nil {
			return err
		}
		if len(emails) == 0 {
			return domain.Validation(op, "emails are required")
		}
		users, err := s.identity.ResolveEmails(dbc, op, emails)
		if err != nil {
			return err
		}
		for _, u := range users {
			if p.IsOwner(u.ID) {
				return domain.Validation(op, "the project owner cannot be removed")
			}
			if !p.HasMember(u.ID) {
				return domain.NewError(domain.CodeMemberNotFound, op,
					fmt.Sprintf("user with email %s is not a member of this project", u.Email), nil)
			}
		}
		if err := s.projectRepo.RemoveMembers(dbc, p.ID, userIDs(users)); err != nil {
			return fmt.Errorf("remove members: %w", err)
		}
		entry = s.activity.entry(p.ID, nil, a.ID(), domain.ActionProjectMembersRemoved, map[string]any{"emails": emailsOf(users)})
		if err := s.activity.record(dbc, entry); err != nil {
			return err
		}
		updated, err = s.projectRepo.GetByID(dbc, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.activity.publish(ctx, entry)
	return newProjectView(updated), nil
}

// ListMembers returns the owner first, then explicit members, with role labels.
func (s *projectService) ListMembers(ctx context.Context, projectID uuid.UUID, actorHandle string) ([]*UserSummary, error) {
	const op = "project.list_members"
	var out []*UserSummary
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		_, p, err := s.load(dbc, op, projectID, actorHandle, access.CanListProjectUsers)
		if err != nil {
			return err
		}
		ids := p.MemberIDs()
		users, err := s.identity.FindByIDs(dbc, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*domain.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}
		out = make([]*UserSummary, 0, len(ids))
		for _, id := range ids {
			if u, ok := byID[id]; ok {
				out = append(out, newUserSummary(u))
			}
		}
		return nil
	})
	return out, err
}

func (s *projectService) ListActivity(ctx context.Context, projectID uuid.UUID, actorHandle string) ([]*domain.ActivityEntry, error) {
	const op = "project.list_activity"
	var out []*domain.ActivityEntry
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		if _, _, err := s.load(dbc, op, projectID, actorHandle, access.CanReadProjectActivity); err != nil {
			return err
		}
		if s.activity == nil || s.activity.repo == nil {
			out = []*domain.ActivityEntry{}
			return nil
		}
		entries, err := s.activity.repo.ListByProject(dbc, projectID, activityPageSize)
		out = entries
		return err
	})
	return out, err
}

// load resolves the actor and project and applies check. Existence is decided
// before permission.
func (s *projectService) load(
	dbc dbctx.Context,
	op string,
	projectID uuid.UUID,
	actorHandle string,
	check func(access.Facts) access.Decision,
) (*actor, *domain.Project, error) {
	a, err := resolveActor(dbc, s.identity, op, actorHandle)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.projectRepo.GetByID(dbc, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("load project: %w", err)
	}
	if err := access.Err(check(projectFacts(a, p)), op, "project"); err != nil {
		return nil, nil, err
	}
	return a, p, nil
}

// explicitMembers drops the owner from the resolved set.
func explicitMembers(ownerID uuid.UUID, users []*domain.User) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		if u.ID != ownerID {
			out = append(out, u.ID)
		}
	}
	return out
}
