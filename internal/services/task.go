package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/access"
	"github.com/yungbote/taskflow-backend/internal/data/aggregates"
	"github.com/yungbote/taskflow-backend/internal/data/repos"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type TaskService interface {
	Create(ctx context.Context, projectID uuid.UUID, spec TaskSpec, actorHandle string) (*TaskView, error)
	Update(ctx context.Context, taskID uuid.UUID, spec TaskSpec, actorHandle string) (*TaskView, error)
	Delete(ctx context.Context, taskID uuid.UUID, actorHandle string) error
	GetByID(ctx context.Context, taskID uuid.UUID, actorHandle string) (*TaskView, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, actorHandle string) ([]*TaskView, error)
	ListForActor(ctx context.Context, actorHandle string) ([]*TaskView, error)
	AddAssignees(ctx context.Context, taskID uuid.UUID, emails []string, actorHandle string) (*TaskView, error)
	RemoveAssignees(ctx context.Context, taskID uuid.UUID, emails []string, actorHandle string) (*TaskView, error)
}

type taskService struct {
	deps        aggregates.BaseDeps
	log         *logger.Logger
	identity    IdentityDirectory
	projectRepo repos.ProjectRepo
	taskRepo    repos.TaskRepo
	activity    *ActivityLog
}

func NewTaskService(
	deps aggregates.BaseDeps,
	baseLog *logger.Logger,
	identity IdentityDirectory,
	projectRepo repos.ProjectRepo,
	taskRepo repos.TaskRepo,
	activity *ActivityLog,
) TaskService {
	serviceLog := baseLog.With("service", "TaskService")
	return &taskService{
		deps:        deps,
		log:         serviceLog,
		identity:    identity,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		activity:    activity,
	}
}

func (s *taskService) Create(ctx context.Context, projectID uuid.UUID, spec TaskSpec, actorHandle string) (*TaskView, error) {
	const op = "task.create"
	var (
		created *domain.ProjectTask
		entry   *domain.ActivityEntry
	)
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, err := resolveActor(dbc, s.identity, op, actorHandle)
		if err != nil {
			return err
		}
		p, err := s.projectRepo.GetByID(dbc, projectID)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		if err := access.Err(access.CanCreateTask(projectFacts(a, p)), op, "project"); err != nil {
			return err
		}
		spec.normalize()
		if err := validateInput(op, spec); err != nil {
			return err
		}
		assignees, err := s.identity.ResolveEmails(dbc, op, spec.AssigneeEmails)
		if err != nil {
			return err
		}

		t := &domain.ProjectTask{
			ID:          uuid.New(),
			Name:        spec.Name,
			Description: spec.Description,
			IsCompleted: spec.IsCompleted,
			DueDate:     spec.DueDate,
			ProjectID:   p.ID,
		}
		if err := s.taskRepo.Create(dbc, t); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		if err := s.taskRepo.AddAssignees(dbc, t.ID, userIDs(assignees)); err != nil {
			return fmt.Errorf("assign task: %w", err)
		}

		taskID := t.ID
		entry = s.activity.entry(p.ID, &taskID, a.ID(), domain.ActionTaskCreated, map[string]any{
			"name":      t.Name,
			"assignees": emailsOf(assignees),
		})
		if err := s.activity.record(dbc, entry); err != nil {
			return err
		}
		created, err = s.taskRepo.GetByID(dbc, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.activity.publish(ctx, entry)
	s.log.Info("task created", "task_id", created.ID, "project_id", created.ProjectID)
	return newTaskView(created), nil
}

func (s *taskService) Update(ctx context.Context, taskID uuid.UUID, spec TaskSpec, actorHandle string) (*TaskView, error) {
	const op = "task.update"
	var (
		updated *domain.ProjectTask
		entry   *domain.ActivityEntry
	)
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, t, err := s.load(dbc, op, taskID, actorHandle, access.CanUpdateTask)
		if err != nil {
			return err
		}
		spec.normalize()
		if err := validateInput(op, spec); err != nil {
			return err
		}
		replaceAssignees := spec.AssigneeEmails != nil
		var assignees []*domain.User
		if replaceAssignees {
			if assignees, err = s.identity.ResolveEmails(dbc, op, spec.AssigneeEmails); err != nil {
				return err
			}
			// Assignees may edit the task but only owners and admins change who is on it.
			if !sameUserIDs(t.AssigneeIDs(), userIDs(assignees)) {
				if err := access.Err(access.CanManageTaskAssignees(taskFacts(a, t)), op, "task"); err != nil {
					return err
				}
			}
		}

		t.Name = spec.Name
		t.Description = spec.Description
		t.IsCompleted = spec.IsCompleted
		t.DueDate = spec.DueDate
		if err := s.taskRepo.Update(dbc, t); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		details := map[string]any{"name": t.Name, "is_completed": t.IsCompleted}
		if replaceAssignees {
			if err := s.taskRepo.ReplaceAssignees(dbc, t.ID, userIDs(assignees)); err != nil {
				return fmt.Errorf("replace assignees: %w", err)
			}
			details["assignees"] = emailsOf(assignees)
		}

		id := t.ID
		entry = s.activity.entry(t.ProjectID, &id, a.ID(), domain.ActionTaskUpdated, details)
		if err := s.activity.record(dbc, entry); err != nil {
			return err
		}
		updated, err = s.taskRepo.GetByID(dbc, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.activity.publish(ctx, entry)
	return newTaskView(updated), nil
}

func (s *taskService) Delete(ctx context.Context, taskID uuid.UUID, actorHandle string) error {
	const op = "task.delete"
	var entry *domain.ActivityEntry
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, t, err := s.load(dbc, op, taskID, actorHandle, access.CanDeleteTask)
		if err != nil {
			return err
		}
		if err := s.taskRepo.Delete(dbc, t.ID); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		id := t.ID
		entry = s.activity.entry(t.ProjectID, &id, a.ID(), domain.ActionTaskDeleted, map[string]any{"name": t.Name})
		return s.activity.record(dbc, entry)
	})
	if err != nil {
		return err
	}
	s.activity.publish(ctx, entry)
	return nil
}

func (s *taskService) GetByID(ctx context.Context, taskID uuid.UUID, actorHandle string) (*TaskView, error) {
	const op = "task.get"
	var view *TaskView
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		_, t, err := s.load(dbc, op, taskID, actorHandle, access.CanReadTask)
		if err != nil {
			return err
		}
		view = newTaskView(t)
		return nil
	})
	return view, err
}

// ListByProject returns every task to the owner and admins. A plain member
// sees only the tasks assigned to them.
func (s *taskService) ListByProject(ctx context.Context, projectID uuid.UUID, actorHandle string) ([]*TaskView, error) {
	const op = "task.list_by_project"
	var views []*TaskView
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		a, err := resolveActor(dbc, s.identity, op, actorHandle)
		if err != nil {
			return err
		}
		p, err := s.projectRepo.GetByID(dbc, projectID)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		facts := projectFacts(a, p)
		if err := access.Err(access.CanListProjectTasks(facts), op, "project"); err != nil {
			return err
		}
		var tasks []*domain.ProjectTask
		if facts.IsAdmin || facts.IsOwner {
			tasks, err = s.taskRepo.ListByProject(dbc, p.ID)
		} else {
			tasks, err = s.taskRepo.ListByProjectAssignedTo(dbc, p.ID, a.ID())
		}
		if err != nil {
			return err
		}
		views = newTaskViews(tasks)
		return nil
	})
	return views, err
}

func (s *taskService) ListForActor(ctx context.Context, actorHandle string) ([]*TaskView, error) {
	const op = "task.list"
	var views []*TaskView
	err := aggregates.Read(ctx, op, func(dbc dbctx.Context) error {
		a, err := resolveActor(dbc, s.identity, op, actorHandle)
		if err != nil {
			return err
		}
		var tasks []*domain.ProjectTask
		if a.IsAdmin {
			tasks, err = s.taskRepo.ListAll(dbc)
		} else {
			tasks, err = s.taskRepo.ListForUser(dbc, a.ID())
		}
		if err != nil {
			return err
		}
		views = newTaskViews(tasks)
		return nil
	})
	return views, err
}

func (s *taskService) AddAssignees(ctx context.Context, taskID uuid.UUID, emails []string, actorHandle string) (*TaskView, error) {
	const op = "task.add_assignees"
	var (
		updated *domain.ProjectTask
		entry   *domain.ActivityEntry
	)
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, t, err := s.load(dbc, op, taskID, actorHandle, access.CanManageTaskAssignees)
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
			if !t.IsAssigned(u.ID) {
				toAdd = append(toAdd, u)
			}
		}
		if err := s.taskRepo.AddAssignees(dbc, t.ID, userIDs(toAdd)); err != nil {
			return fmt.Errorf("add assignees: %w", err)
		}
		if len(toAdd) > 0 {
			id := t.ID
			entry = s.activity.entry(t.ProjectID, &id, a.ID(), domain.ActionTaskAssigneesAdded, map[string]any{"emails": emailsOf(toAdd)})
			if err := s.activity.record(dbc, entry); err != nil {
				return err
			}
		}
		updated, err = s.taskRepo.GetByID(dbc, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.activity.publish(ctx, entry)
	return newTaskView(updated), nil
}

// RemoveAssignees fails the whole call if any email is not assigned.
func (s *taskService) RemoveAssignees(ctx context.Context, taskID uuid.UUID, emails []string, actorHandle string) (*TaskView, error) {
	const op = "task.remove_assignees"
	var (
		updated *domain.ProjectTask
		entry   *domain.ActivityEntry
	)
	err := aggregates.Write(ctx, s.deps, op, func(dbc dbctx.Context) error {
		a, t, err := s.load(dbc, op, taskID, actorHandle, access.CanManageTaskAssignees)
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
			if !t.IsAssigned(u.ID) {
				return domain.NewError(domain.CodeMemberNotFound, op,
					fmt.Sprintf("user with email %s is not assigned to this task", u.Email), nil)
			}
		}
		if err := s.taskRepo.RemoveAssignees(dbc, t.ID, userIDs(users)); err != nil {
			return fmt.Errorf("remove assignees: %w", err)
		}
		id := t.ID
		entry = s.activity.entry(t.ProjectID, &id, a.ID(), domain.ActionTaskAssigneesRemoved, map[string]any{"emails": emailsOf(users)})
		if err := s.activity.record(dbc, entry); err != nil {
			return err
		}
		updated, err = s.taskRepo.GetByID(dbc, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.activity.publish(ctx, entry)
	return newTaskView(updated), nil
}

func (s *taskService) load(
	dbc dbctx.Context,
	op string,
	taskID uuid.UUID,
	actorHandle string,
	check func(access.Facts) access.Decision,
) (*actor, *domain.ProjectTask, error) {
	a, err := resolveActor(dbc, s.identity, op, actorHandle)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.taskRepo.GetByID(dbc, taskID)
	if err != nil {
		return nil, nil, fmt.Errorf("load task: %w", err)
	}
	if err := access.Err(check(taskFacts(a, t)), op, "task"); err != nil {
		return nil, nil, err
	}
	return a, t, nil
}

func sameUserIDs(a, b []uuid.UUID) bool {
	set := make(map[uuid.UUID]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	other := make(map[uuid.UUID]bool, len(b))
	for _, id := range b {
		if !set[id] {
			return false
		}
		other[id] = true
	}
	return len(other) == len(set)
}
