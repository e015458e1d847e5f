package project

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/data/repos/testutil"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
)

func TestTaskRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTaskRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "owner")
	bob := testutil.SeedUser(t, ctx, tx, "bob")
	carol := testutil.SeedUser(t, ctx, tx, "carol")
	p := testutil.SeedProject(t, ctx, tx, owner, bob, carol)

	due := time.Now().UTC().Add(48 * time.Hour)
	task := &domain.ProjectTask{
		ID:        uuid.New(),
		Name:      "T1",
		ProjectID: p.ID,
		DueDate:   &due,
		Assignees: []domain.TaskAssignee{{UserID: bob.ID}},
	}
	if err := repo.Create(dbc, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(dbc, task.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v task=%+v", err, got)
	}
	if got.Project == nil || got.Project.OwnerID != owner.ID {
		t.Fatalf("GetByID: project not preloaded: %+v", got.Project)
	}
	if !got.IsAssigned(bob.ID) || got.IsAssigned(carol.ID) {
		t.Fatalf("GetByID: unexpected assignees: %+v", got.Assignees)
	}

	got.IsCompleted = true
	got.DueDate = nil
	if err := repo.Update(dbc, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID(dbc, task.ID)
	if !got.IsCompleted || got.DueDate != nil {
		t.Fatalf("Update: unexpected task: %+v", got)
	}

	if err := repo.AddAssignees(dbc, task.ID, []uuid.UUID{bob.ID, carol.ID}); err != nil {
		t.Fatalf("AddAssignees: %v", err)
	}
	got, _ = repo.GetByID(dbc, task.ID)
	if len(got.Assignees) != 2 {
		t.Fatalf("AddAssignees: want 2, got %d", len(got.Assignees))
	}

	mine, err := repo.ListByProjectAssignedTo(dbc, p.ID, carol.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListByProjectAssignedTo: err=%v len=%d", err, len(mine))
	}

	if err := repo.RemoveAssignees(dbc, task.ID, []uuid.UUID{bob.ID}); err != nil {
		t.Fatalf("RemoveAssignees: %v", err)
	}
	if err := repo.ReplaceAssignees(dbc, task.ID, nil); err != nil {
		t.Fatalf("ReplaceAssignees: %v", err)
	}
	got, _ = repo.GetByID(dbc, task.ID)
	if len(got.Assignees) != 0 {
		t.Fatalf("ReplaceAssignees: want none, got %+v", got.Assignees)
	}

	forOwner, err := repo.ListForUser(dbc, owner.ID)
	if err != nil || len(forOwner) != 1 {
		t.Fatalf("ListForUser(owner): err=%v len=%d", err, len(forOwner))
	}
	forBob, err := repo.ListForUser(dbc, bob.ID)
	if err != nil || len(forBob) != 0 {
		t.Fatalf("ListForUser(unassigned member): err=%v len=%d", err, len(forBob))
	}

	if err := repo.Delete(dbc, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, err := repo.ListAll(dbc)
	if err != nil || len(all) != 0 {
		t.Fatalf("ListAll after delete: err=%v len=%d", err, len(all))
	}
}
