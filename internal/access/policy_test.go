package access

import (
	"testing"

	"github.com/yungbote/taskflow-backend/internal/domain"
)

func TestDecideTable(t *testing.T) {
	stranger := Facts{Exists: true}
	owner := Facts{Exists: true, IsOwner: true}
	member := Facts{Exists: true, IsMember: true}
	assignee := Facts{Exists: true, IsAssignee: true}
	admin := Facts{Exists: true, IsAdmin: true}

	cases := []struct {
		action Action
		facts  Facts
		want   Decision
	}{
		{ReadProject, owner, Allow},
		{ReadProject, member, Allow},
		{ReadProject, stranger, Forbidden},
		{ReadProject, admin, Allow},
		{UpdateProject, owner, Allow},
		{UpdateProject, member, Forbidden},
		{UpdateProject, admin, Allow},
		{DeleteProject, member, Forbidden},
		{DeleteProject, owner, Allow},
		{ManageProjectMembers, member, Forbidden},
		{ManageProjectMembers, owner, Allow},
		{ListProjectUsers, member, Allow},
		{ListProjectUsers, stranger, Forbidden},
		{ListProjectTasks, member, Allow},
		{ReadProjectActivity, member, Allow},
		{CreateTask, member, Forbidden},
		{CreateTask, owner, Allow},
		{CreateTask, admin, Allow},
		{ReadTask, assignee, Allow},
		{ReadTask, member, Forbidden},
		{ReadTask, owner, Allow},
		{UpdateTask, assignee, Allow},
		{UpdateTask, stranger, Forbidden},
		{DeleteTask, assignee, Forbidden},
		{DeleteTask, owner, Allow},
		{ManageTaskAssignees, assignee, Forbidden},
		{ManageTaskAssignees, owner, Allow},
		{ManageTaskAssignees, admin, Allow},
	}
	for _, tc := range cases {
		t.Run(string(tc.action), func(t *testing.T) {
			if got := Decide(tc.action, tc.facts); got != tc.want {
				t.Fatalf("Decide(%s, %+v): want=%s got=%s", tc.action, tc.facts, tc.want, got)
			}
		})
	}
}

func TestMissingTargetIsNotFoundForEveryone(t *testing.T) {
	actions := []Action{
		ReadProject, UpdateProject, DeleteProject, ManageProjectMembers, ListProjectUsers,
		ListProjectTasks, ReadProjectActivity, CreateTask, ReadTask, UpdateTask, DeleteTask,
		ManageTaskAssignees,
	}
	actors := []Facts{
		{},
		{IsAdmin: true},
		{IsOwner: true},
		{IsMember: true, IsAssignee: true},
	}
	for _, a := range actions {
		for _, f := range actors {
			if got := Decide(a, f); got != NotFound {
				t.Fatalf("Decide(%s, %+v): want=not_found got=%s", a, f, got)
			}
		}
	}
}

func TestCreateProjectAlwaysAllowed(t *testing.T) {
	if got := CanCreateProject(Facts{}); got != Allow {
		t.Fatalf("want allow, got=%s", got)
	}
}

func TestAdministerUsersRequiresAdmin(t *testing.T) {
	if got := CanAdministerUsers(Facts{Exists: true, IsOwner: true}); got != Forbidden {
		t.Fatalf("owner: want forbidden, got=%s", got)
	}
	if got := CanAdministerUsers(Facts{IsAdmin: true}); got != Allow {
		t.Fatalf("admin: want allow, got=%s", got)
	}
}

func TestErrMapsDecisions(t *testing.T) {
	if err := Err(Allow, "op", "project"); err != nil {
		t.Fatalf("allow: want nil, got=%v", err)
	}
	if err := Err(Forbidden, "op", "project"); !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("forbidden: got=%v", err)
	}
	if err := Err(NotFound, "op", "project"); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("not found: got=%v", err)
	}
}
