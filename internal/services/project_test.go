package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/domain"
)

func TestProjectServiceSprint1Scenario(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")
	dave := h.adminUser(t, "dave")

	p := h.project(t, alice, "Sprint1", bob)
	t1 := h.task(t, alice, p.ID, "T1")

	got, err := h.projects.GetByID(h.ctx, p.ID, bob.UserName)
	if err != nil {
		t.Fatalf("member GetByID: %v", err)
	}
	if got.Name != "Sprint1" {
		t.Fatalf("member GetByID: want Sprint1, got %q", got.Name)
	}
	members, err := h.projects.ListMembers(h.ctx, p.ID, bob.UserName)
	if err != nil {
		t.Fatalf("member ListMembers: %v", err)
	}
	if len(members) != 2 || members[0].ID != alice.ID || members[1].ID != bob.ID {
		t.Fatalf("ListMembers: want [alice bob], got %+v", members)
	}

	_, err = h.projects.GetByID(h.ctx, p.ID, carol.UserName)
	wantCode(t, err, domain.CodeForbidden)
	_, err = h.projects.ListMembers(h.ctx, p.ID, carol.UserName)
	wantCode(t, err, domain.CodeForbidden)

	if _, err := h.projects.GetByID(h.ctx, p.ID, dave.UserName); err != nil {
		t.Fatalf("admin GetByID: %v", err)
	}
	if err := h.projects.Delete(h.ctx, p.ID, dave.UserName); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}

	_, err = h.projects.GetByID(h.ctx, p.ID, alice.UserName)
	wantCode(t, err, domain.CodeNotFound)
	_, err = h.tasks.GetByID(h.ctx, t1.ID, dave.UserName)
	wantCode(t, err, domain.CodeNotFound)

	var remaining int64
	if err := h.db.Model(&domain.ProjectTask{}).Where("project_id = ?", p.ID).Count(&remaining).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("delete should cascade to tasks, %d left", remaining)
	}
}

func TestProjectServiceRoundTrip(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")

	spec := projectSpec("Roadmap")
	spec.MemberEmails = []string{"  BOB@example.com ", alice.Email, bob.Email}
	created, err := h.projects.Create(h.ctx, spec, alice.UserName)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := h.projects.GetByID(h.ctx, created.ID, alice.UserName)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != spec.Name || got.Description != spec.Description {
		t.Fatalf("GetByID: fields mismatch: %+v", got)
	}
	if !got.StartDate.Equal(spec.StartDate) || !got.EndDate.Equal(spec.EndDate) {
		t.Fatalf("GetByID: dates mismatch: %v..%v", got.StartDate, got.EndDate)
	}
	if got.OwnerID != alice.ID || got.OwnerName != "Firstalice Last" {
		t.Fatalf("GetByID: owner mismatch: %s %q", got.OwnerID, got.OwnerName)
	}
	if len(got.MemberIDs) != 2 || got.MemberIDs[0] != alice.ID || got.MemberIDs[1] != bob.ID {
		t.Fatalf("GetByID: want member ids [alice bob], got %v", got.MemberIDs)
	}
}

func TestProjectServiceValidation(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	cases := []struct {
		name   string
		mutate func(*ProjectSpec)
		want   string
	}{
		{"empty name", func(s *ProjectSpec) { s.Name = "   " }, "name is required"},
		{"long name", func(s *ProjectSpec) { s.Name = strings.Repeat("x", 101) }, "name must be at most 100"},
		{"long description", func(s *ProjectSpec) { s.Description = strings.Repeat("x", 501) }, "description must be at most 500"},
		{"missing start", func(s *ProjectSpec) { s.StartDate = time.Time{} }, "start_date is required"},
		{"end before start", func(s *ProjectSpec) { s.EndDate = s.StartDate.Add(-time.Hour) }, "end_date must not be before start_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := projectSpec("valid")
			tc.mutate(&spec)
			_, err := h.projects.Create(h.ctx, spec, alice.UserName)
			wantCode(t, err, domain.CodeValidation)
			if !strings.Contains(domain.MessageOf(err), tc.want) {
				t.Fatalf("message: want %q in %q", tc.want, domain.MessageOf(err))
			}
		})
	}
}

func TestProjectServiceUnknownActor(t *testing.T) {
	h := newHarness(t)
	_, err := h.projects.Create(h.ctx, projectSpec("x"), "nobody")
	wantCode(t, err, domain.CodeActorNotFound)
	_, err = h.projects.ListForUser(h.ctx, "nobody")
	wantCode(t, err, domain.CodeActorNotFound)
}

func TestProjectServiceMissingProjectIsNotFoundForEveryone(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	dave := h.adminUser(t, "dave")
	missing := uuid.New()

	for _, handle := range []string{alice.UserName, dave.UserName} {
		_, err := h.projects.GetByID(h.ctx, missing, handle)
		wantCode(t, err, domain.CodeNotFound)
		_, err = h.projects.Update(h.ctx, missing, projectSpec("x"), handle)
		wantCode(t, err, domain.CodeNotFound)
		wantCode(t, h.projects.Delete(h.ctx, missing, handle), domain.CodeNotFound)
		_, err = h.projects.AddMembers(h.ctx, missing, []string{alice.Email}, handle)
		wantCode(t, err, domain.CodeNotFound)
	}
}

func TestProjectServiceOnlyOwnerMutates(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	dave := h.adminUser(t, "dave")
	p := h.project(t, alice, "Sprint1", bob)

	_, err := h.projects.Update(h.ctx, p.ID, projectSpec("renamed"), bob.UserName)
	wantCode(t, err, domain.CodeForbidden)
	wantCode(t, h.projects.Delete(h.ctx, p.ID, bob.UserName), domain.CodeForbidden)
	_, err = h.projects.AddMembers(h.ctx, p.ID, []string{dave.Email}, bob.UserName)
	wantCode(t, err, domain.CodeForbidden)

	updated, err := h.projects.Update(h.ctx, p.ID, projectSpec("by admin"), dave.UserName)
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if updated.Name != "by admin" || updated.OwnerID != alice.ID {
		t.Fatalf("admin Update: got %+v", updated)
	}
	if len(updated.MemberIDs) != 1 {
		t.Fatalf("Update without members should clear explicit members, got %v", updated.MemberIDs)
	}
}

func TestProjectServiceUnresolvableEmailCommitsNothing(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")
	p := h.project(t, alice, "Sprint1", bob)

	spec := projectSpec("renamed")
	spec.MemberEmails = []string{carol.Email, "ghost@example.com"}
	_, err := h.projects.Update(h.ctx, p.ID, spec, alice.UserName)
	wantCode(t, err, domain.CodeMemberNotFound)
	if !strings.Contains(domain.MessageOf(err), "ghost@example.com") {
		t.Fatalf("message should name the email: %q", domain.MessageOf(err))
	}

	_, err = h.projects.AddMembers(h.ctx, p.ID, []string{carol.Email, "ghost@example.com"}, alice.UserName)
	wantCode(t, err, domain.CodeMemberNotFound)

	got, err := h.projects.GetByID(h.ctx, p.ID, alice.UserName)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Sprint1" {
		t.Fatalf("name changed despite failure: %q", got.Name)
	}
	if containsID(got.MemberIDs, carol.ID) || !containsID(got.MemberIDs, bob.ID) {
		t.Fatalf("membership changed despite failure: %v", got.MemberIDs)
	}
}

func TestProjectServiceMembers(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")
	p := h.project(t, alice, "Sprint1")

	got, err := h.projects.AddMembers(h.ctx, p.ID, []string{bob.Email, carol.Email, alice.Email}, alice.UserName)
	if err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	if len(got.MemberIDs) != 3 {
		t.Fatalf("AddMembers: want owner plus two, got %v", got.MemberIDs)
	}
	if _, err := h.projects.AddMembers(h.ctx, p.ID, []string{bob.Email}, alice.UserName); err != nil {
		t.Fatalf("AddMembers existing member should be a no-op: %v", err)
	}

	got, err = h.projects.RemoveMembers(h.ctx, p.ID, []string{bob.Email}, alice.UserName)
	if err != nil {
		t.Fatalf("RemoveMembers: %v", err)
	}
	if containsID(got.MemberIDs, bob.ID) {
		t.Fatalf("RemoveMembers: bob still present: %v", got.MemberIDs)
	}

	_, err = h.projects.RemoveMembers(h.ctx, p.ID, []string{bob.Email}, alice.UserName)
	wantCode(t, err, domain.CodeMemberNotFound)
	if !strings.Contains(domain.MessageOf(err), "not a member") {
		t.Fatalf("second remove: %q", domain.MessageOf(err))
	}

	_, err = h.projects.RemoveMembers(h.ctx, p.ID, []string{alice.Email}, alice.UserName)
	wantCode(t, err, domain.CodeValidation)
	_, err = h.projects.RemoveMembers(h.ctx, p.ID, nil, alice.UserName)
	wantCode(t, err, domain.CodeValidation)

	// A failed remove leaves carol in place.
	_, err = h.projects.RemoveMembers(h.ctx, p.ID, []string{carol.Email, bob.Email}, alice.UserName)
	wantCode(t, err, domain.CodeMemberNotFound)
	got, _ = h.projects.GetByID(h.ctx, p.ID, alice.UserName)
	if !containsID(got.MemberIDs, carol.ID) {
		t.Fatalf("partial remove committed: %v", got.MemberIDs)
	}
}

func TestProjectServiceListForUser(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")
	dave := h.adminUser(t, "dave")

	h.project(t, alice, "mine")
	h.project(t, bob, "joined", alice)
	h.project(t, carol, "foreign")

	cases := []struct {
		handle string
		want   int
	}{
		{alice.UserName, 2},
		{bob.UserName, 1},
		{carol.UserName, 1},
		{dave.UserName, 3},
	}
	for _, tc := range cases {
		t.Run(tc.handle, func(t *testing.T) {
			got, err := h.projects.ListForUser(h.ctx, tc.handle)
			if err != nil {
				t.Fatalf("ListForUser: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("ListForUser: want %d projects, got %d", tc.want, len(got))
			}
		})
	}
}

func TestProjectServiceActivity(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	carol := h.user(t, "carol")

	p := h.project(t, alice, "Sprint1")
	if _, err := h.projects.AddMembers(h.ctx, p.ID, []string{bob.Email}, alice.UserName); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}

	entries, err := h.projects.ListActivity(h.ctx, p.ID, bob.UserName)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListActivity: want 2 entries, got %d", len(entries))
	}
	if entries[0].Action != domain.ActionProjectMembersAdded || entries[1].Action != domain.ActionProjectCreated {
		t.Fatalf("ListActivity: want newest first, got %s, %s", entries[0].Action, entries[1].Action)
	}

	_, err = h.projects.ListActivity(h.ctx, p.ID, carol.UserName)
	wantCode(t, err, domain.CodeForbidden)

	// Rejected writes publish nothing.
	_, _ = h.projects.AddMembers(h.ctx, p.ID, []string{"ghost@example.com"}, alice.UserName)
	got := h.bus.actions()
	want := []string{domain.ActionProjectCreated, domain.ActionProjectMembersAdded}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("published: want %v, got %v", want, got)
	}
}
