// Package access decides whether an actor may perform an action on a project
// or task. Decisions are pure functions of precomputed facts; callers load the
// facts and translate the decision into a domain error.
//
// Every check runs in the same order: a missing target is NotFound for every
// actor, admins are then allowed, and only then does the per-action rule apply.
package access

import "github.com/yungbote/taskflow-backend/internal/domain"

type Decision int

const (
	Allow Decision = iota
	Forbidden
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Facts describes the actor's relation to the target resource. For task
// actions IsOwner and IsMember refer to the parent project.
type Facts struct {
	Exists     bool
	IsAdmin    bool
	IsOwner    bool
	IsMember   bool
	IsAssignee bool
}

type Action string

const (
	CreateProject        Action = "project.create"
	ReadProject          Action = "project.read"
	UpdateProject        Action = "project.update"
	DeleteProject        Action = "project.delete"
	ManageProjectMembers Action = "project.members"
	ListProjectUsers     Action = "project.users"
	ListProjectTasks     Action = "project.tasks"
	ReadProjectActivity  Action = "project.activity"
	CreateTask           Action = "task.create"
	ReadTask             Action = "task.read"
	UpdateTask           Action = "task.update"
	DeleteTask           Action = "task.delete"
	ManageTaskAssignees  Action = "task.assignees"
	AdministerUsers      Action = "admin.users"
)

type rule func(f Facts) bool

func ownerOnly(f Facts) bool       { return f.IsOwner }
func ownerOrMember(f Facts) bool   { return f.IsOwner || f.IsMember }
func ownerOrAssignee(f Facts) bool { return f.IsOwner || f.IsAssignee }
func nobody(Facts) bool            { return false }

var rules = map[Action]rule{
	ReadProject:          ownerOrMember,
	UpdateProject:        ownerOnly,
	DeleteProject:        ownerOnly,
	ManageProjectMembers: ownerOnly,
	ListProjectUsers:     ownerOrMember,
	ListProjectTasks:     ownerOrMember,
	ReadProjectActivity:  ownerOrMember,
	CreateTask:           ownerOnly,
	ReadTask:             ownerOrAssignee,
	UpdateTask:           ownerOrAssignee,
	DeleteTask:           ownerOnly,
	ManageTaskAssignees:  ownerOnly,
	AdministerUsers:      nobody,
}

// Decide evaluates action against f.
func Decide(action Action, f Facts) Decision {
	if action == CreateProject {
		return Allow
	}
	if action == AdministerUsers {
		if f.IsAdmin {
			return Allow
		}
		return Forbidden
	}
	if !f.Exists {
		return NotFound
	}
	if f.IsAdmin {
		return Allow
	}
	r, ok := rules[action]
	if !ok || !r(f) {
		return Forbidden
	}
	return Allow
}

func CanCreateProject(f Facts) Decision        { return Decide(CreateProject, f) }
func CanReadProject(f Facts) Decision          { return Decide(ReadProject, f) }
func CanUpdateProject(f Facts) Decision        { return Decide(UpdateProject, f) }
func CanDeleteProject(f Facts) Decision        { return Decide(DeleteProject, f) }
func CanManageProjectMembers(f Facts) Decision { return Decide(ManageProjectMembers, f) }
func CanListProjectUsers(f Facts) Decision     { return Decide(ListProjectUsers, f) }
func CanListProjectTasks(f Facts) Decision     { return Decide(ListProjectTasks, f) }
func CanReadProjectActivity(f Facts) Decision  { return Decide(ReadProjectActivity, f) }
func CanCreateTask(f Facts) Decision           { return Decide(CreateTask, f) }
func CanReadTask(f Facts) Decision             { return Decide(ReadTask, f) }
func CanUpdateTask(f Facts) Decision           { return Decide(UpdateTask, f) }
func CanDeleteTask(f Facts) Decision           { return Decide(DeleteTask, f) }
func CanManageTaskAssignees(f Facts) Decision  { return Decide(ManageTaskAssignees, f) }
func CanAdministerUsers(f Facts) Decision      { return Decide(AdministerUsers, f) }

// Err converts a decision into the matching domain error, or nil on Allow.
func Err(d Decision, op, what string) error {
	switch d {
	case Allow:
		return nil
	case NotFound:
		return domain.NotFound(op, what)
	default:
		return domain.Forbidden(op)
	}
}
