package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/domain"
)

func TestTaskServiceT1Scenario(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")

	p := h.project(t, alice, "Sprint1", bob)
	t1 := h.task(t, alice, p.ID, "T1")
	if len(t1.AssigneeIDs) != 0 || t1.IsCompleted {
		t.Fatalf("new task: want unassigned and open, got %+v", t1)
	}
	if t1.CreatedAt.IsZero() {
		t.Fatalf("new task: created_at not assigned")
	}

	// Bob is a project member but not yet an assignee.
	_, err := h.tasks.Update(h.ctx, t1.ID, TaskSpec{Name: "T1", IsCompleted: true}, bob.UserName)
	wantCode(t, err, domain.CodeForbidden)

	assigned, err := h.tasks.AddAssignees(h.ctx, t1.ID, []string{bob.Email}, alice.UserName)
	if err != nil {
		t.Fatalf("AddAssignees: %v", err)
	}
	if len(assigned.AssigneeIDs) != 1 || assigned.AssigneeIDs[0] != bob.ID {
		t.Fatalf("AddAssignees: want [bob], got %v", assigned.AssigneeIDs)
	}

	done, err := h.tasks.Update(h.ctx, t1.ID, TaskSpec{Name: "T1", IsCompleted: true}, bob.UserName)
	if err != nil {
		t.Fatalf("assignee Update: %v", err)
	}
	if !done.IsCompleted {
		t.Fatalf("assignee Update: completion flag not set")
	}
	if !containsID(done.AssigneeIDs, bob.ID) {
		t.Fatalf("Update without assignee emails must keep assignees, got %v", done.AssigneeIDs)
	}

	_, err = h.tasks.Update(h.ctx, t1.ID, TaskSpec{Name: "T1"}, carol.UserName)
	wantCode(t, err, domain.CodeForbidden)
	_, err = h.tasks.GetByID(h.ctx, t1.ID, carol.UserName)
	wantCode(t, err, domain.CodeForbidden)
}

func TestTaskServiceCreateChecks(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	dave := h.adminUser(t, "dave")
	p := h.project(t, alice, "Sprint1", bob)

	_, err := h.tasks.Create(h.ctx, uuid.New(), TaskSpec{Name: "x"}, alice.UserName)
	wantCode(t, err, domain.CodeNotFound)
	_, err = h.tasks.Create(h.ctx, p.ID, TaskSpec{Name: "x"}, bob.UserName)
	wantCode(t, err, domain.CodeForbidden)
	_, err = h.tasks.Create(h.ctx, p.ID, TaskSpec{Name: strings.Repeat("x", 101)}, alice.UserName)
	wantCode(t, err, domain.CodeValidation)
	_, err = h.tasks.Create(h.ctx, p.ID, TaskSpec{Name: "x", AssigneeEmails: []string{"ghost@example.com"}}, alice.UserName)
	wantCode(t, err, domain.CodeMemberNotFound)

	due := time.Date(2026, 2, 1, 17, 0, 0, 0, time.UTC)
	v, err := h.tasks.Create(h.ctx, p.ID, TaskSpec{Name: "by admin", DueDate: &due, AssigneeEmails: []string{bob.Email}}, dave.UserName)
	if err != nil {
		t.Fatalf("admin Create: %v", err)
	}
	if v.DueDate == nil || !v.DueDate.Equal(due) {
		t.Fatalf("admin Create: due date mismatch: %v", v.DueDate)
	}

	all, err := h.tasks.ListByProject(h.ctx, p.ID, alice.UserName)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("failed creates must not persist tasks, got %d", len(all))
	}
}

func TestTaskServiceUpdateAssignees(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")
	p := h.project(t, alice, "Sprint1")
	task := h.task(t, alice, p.ID, "T1", bob)

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := h.tasks.Update(h.ctx, task.ID, TaskSpec{
		Name:           "T1 renamed",
		Description:    "now with a description",
		DueDate:        &due,
		AssigneeEmails: []string{carol.Email},
	}, alice.UserName)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "T1 renamed" || got.DueDate == nil {
		t.Fatalf("Update: fields not replaced: %+v", got)
	}
	if len(got.AssigneeIDs) != 1 || got.AssigneeIDs[0] != carol.ID {
		t.Fatalf("Update: want assignees [carol], got %v", got.AssigneeIDs)
	}

	_, err = h.tasks.Update(h.ctx, task.ID, TaskSpec{Name: "T1", AssigneeEmails: []string{bob.Email, "ghost@example.com"}}, alice.UserName)
	wantCode(t, err, domain.CodeMemberNotFound)
	got, _ = h.tasks.GetByID(h.ctx, task.ID, alice.UserName)
	if got.Name != "T1 renamed" || !containsID(got.AssigneeIDs, carol.ID) {
		t.Fatalf("failed Update must not commit: %+v", got)
	}

	got, err = h.tasks.Update(h.ctx, task.ID, TaskSpec{Name: "T1", AssigneeEmails: []string{}}, alice.UserName)
	if err != nil {
		t.Fatalf("Update clear: %v", err)
	}
	if len(got.AssigneeIDs) != 0 {
		t.Fatalf("empty assignee list should clear, got %v", got.AssigneeIDs)
	}
	if got.DueDate != nil {
		t.Fatalf("nil due date should clear, got %v", got.DueDate)
	}
}

func TestTaskServiceRemoveAssignees(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")
	p := h.project(t, alice, "Sprint1")
	task := h.task(t, alice, p.ID, "T1", bob, carol)

	_, err := h.tasks.RemoveAssignees(h.ctx, task.ID, []string{bob.Email}, bob.UserName)
	wantCode(t, err, domain.CodeForbidden)

	got, err := h.tasks.RemoveAssignees(h.ctx, task.ID, []string{bob.Email}, alice.UserName)
	if err != nil {
		t.Fatalf("RemoveAssignees: %v", err)
	}
	if containsID(got.AssigneeIDs, bob.ID) || !containsID(got.AssigneeIDs, carol.ID) {
		t.Fatalf("RemoveAssignees: got %v", got.AssigneeIDs)
	}

	_, err = h.tasks.RemoveAssignees(h.ctx, task.ID, []string{carol.Email, bob.Email}, alice.UserName)
	wantCode(t, err, domain.CodeMemberNotFound)
	if !strings.Contains(domain.MessageOf(err), "not assigned") {
		t.Fatalf("message: %q", domain.MessageOf(err))
	}
	got, _ = h.tasks.GetByID(h.ctx, task.ID, alice.UserName)
	if !containsID(got.AssigneeIDs, carol.ID) {
		t.Fatalf("failed remove must not commit: %v", got.AssigneeIDs)
	}
}

func TestTaskServiceListing(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")
	dave := h.adminUser(t, "dave")

	p := h.project(t, alice, "Sprint1", bob)
	h.task(t, alice, p.ID, "mine", bob)
	h.task(t, alice, p.ID, "unassigned")
	other := h.project(t, carol, "Other")
	h.task(t, carol, other.ID, "carol's", bob)

	cases := []struct {
		name   string
		handle string
		want   int
	}{
		{"owner sees all", alice.UserName, 2},
		{"member sees assigned", bob.UserName, 1},
		{"admin sees all", dave.UserName, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.tasks.ListByProject(h.ctx, p.ID, tc.handle)
			if err != nil {
				t.Fatalf("ListByProject: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("ListByProject: want %d, got %d", tc.want, len(got))
			}
		})
	}

	_, err := h.tasks.ListByProject(h.ctx, p.ID, carol.UserName)
	wantCode(t, err, domain.CodeForbidden)
	_, err = h.tasks.ListByProject(h.ctx, uuid.New(), dave.UserName)
	wantCode(t, err, domain.CodeNotFound)

	forActor := []struct {
		handle string
		want   int
	}{
		{alice.UserName, 2},
		{bob.UserName, 2},
		{carol.UserName, 1},
		{dave.UserName, 3},
	}
	for _, tc := range forActor {
		got, err := h.tasks.ListForActor(h.ctx, tc.handle)
		if err != nil {
			t.Fatalf("ListForActor(%s): %v", tc.handle, err)
		}
		if len(got) != tc.want {
			t.Fatalf("ListForActor(%s): want %d, got %d", tc.handle, tc.want, len(got))
		}
	}
}

func TestTaskServiceDelete(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	p := h.project(t, alice, "Sprint1")
	task := h.task(t, alice, p.ID, "T1", bob)

	wantCode(t, h.tasks.Delete(h.ctx, task.ID, bob.UserName), domain.CodeForbidden)
	if err := h.tasks.Delete(h.ctx, task.ID, alice.UserName); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := h.tasks.GetByID(h.ctx, task.ID, alice.UserName)
	wantCode(t, err, domain.CodeNotFound)
	wantCode(t, h.tasks.Delete(h.ctx, task.ID, alice.UserName), domain.CodeNotFound)
}

func TestTaskServiceAssigneeCannotReassignThroughUpdate(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")
	eve := h.user(t, "eve")
	p := h.project(t, alice, "Sprint1", bob)
	task := h.task(t, alice, p.ID, "T1", bob, carol)

	_, err := h.tasks.AddAssignees(h.ctx, task.ID, []string{eve.Email}, bob.UserName)
	wantCode(t, err, domain.CodeForbidden)

	_, err = h.tasks.Update(h.ctx, task.ID, TaskSpec{
		Name:           "T1 hijacked",
		AssigneeEmails: []string{bob.Email, eve.Email},
	}, bob.UserName)
	wantCode(t, err, domain.CodeForbidden)

	got, err := h.tasks.GetByID(h.ctx, task.ID, alice.UserName)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "T1" || len(got.AssigneeIDs) != 2 || !containsID(got.AssigneeIDs, carol.ID) || containsID(got.AssigneeIDs, eve.ID) {
		t.Fatalf("rejected Update must not commit: %+v", got)
	}
	_, err = h.tasks.GetByID(h.ctx, task.ID, eve.UserName)
	wantCode(t, err, domain.CodeForbidden)

	// Resending the current set in another order is not a change.
	done, err := h.tasks.Update(h.ctx, task.ID, TaskSpec{
		Name:           "T1",
		IsCompleted:    true,
		AssigneeEmails: []string{carol.Email, bob.Email},
	}, bob.UserName)
	if err != nil {
		t.Fatalf("assignee Update with unchanged assignees: %v", err)
	}
	if !done.IsCompleted || len(done.AssigneeIDs) != 2 {
		t.Fatalf("assignee Update: got %+v", done)
	}
}

func TestSameUserIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	cases := []struct {
		name string
		x, y []uuid.UUID
		want bool
	}{
		{"both empty", nil, []uuid.UUID{}, true},
		{"reordered", []uuid.UUID{a, b}, []uuid.UUID{b, a}, true},
		{"duplicate input", []uuid.UUID{a, b}, []uuid.UUID{a, b, a}, true},
		{"added", []uuid.UUID{a}, []uuid.UUID{a, c}, false},
		{"swapped", []uuid.UUID{a, b}, []uuid.UUID{a, c}, false},
		{"removed", []uuid.UUID{a, b}, []uuid.UUID{a}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sameUserIDs(tc.x, tc.y); got != tc.want {
				t.Fatalf("sameUserIDs: got=%v want=%v", got, tc.want)
			}
		})
	}
}
