package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/data/repos/testutil"
	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewUserRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*domain.User{
		{
			ID:        uuid.New(),
			UserName:  "alice",
			Email:     "  Alice@Example.com ",
			Password:  "pw",
			FirstName: "Alice",
			LastName:  "Liddell",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}
	if created[0].Email != "alice@example.com" {
		t.Fatalf("Create: email not normalized: %q", created[0].Email)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(dbc, []string{"ALICE@example.com"})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].ID != created[0].ID {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	byHandle, err := repo.GetByUserName(dbc, "alice")
	if err != nil || byHandle == nil || byHandle.ID != created[0].ID {
		t.Fatalf("GetByUserName: err=%v user=%+v", err, byHandle)
	}
	missing, err := repo.GetByUserName(dbc, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("GetByUserName (missing): err=%v user=%+v", err, missing)
	}

	exists, err := repo.EmailExists(dbc, "alice@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: err=%v exists=%v", err, exists)
	}
	exists, err = repo.UserNameExists(dbc, "bob")
	if err != nil || exists {
		t.Fatalf("UserNameExists (missing): err=%v exists=%v", err, exists)
	}

	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{created[0].ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	all, err := repo.ListAll(dbc)
	if err != nil || len(all) != 0 {
		t.Fatalf("ListAll after delete: err=%v len=%d", err, len(all))
	}
}

func TestUserRoleRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "carol")
	repo := NewUserRoleRepo(db, testutil.Logger(t))

	if err := repo.Add(dbc, u.ID, domain.RoleUser); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(dbc, u.ID, domain.RoleUser); err != nil {
		t.Fatalf("Add (again): %v", err)
	}
	var rows int64
	if err := tx.Model(&domain.UserRole{}).Where("user_id = ?", u.ID).Count(&rows).Error; err != nil || rows != 1 {
		t.Fatalf("role rows: err=%v count=%d", err, rows)
	}

	has, err := repo.HasRole(dbc, u.ID, domain.RoleAdmin)
	if err != nil || has {
		t.Fatalf("HasRole admin: err=%v has=%v", err, has)
	}

	if err := repo.Remove(dbc, u.ID, domain.RoleUser); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	has, err = repo.HasRole(dbc, u.ID, domain.RoleUser)
	if err != nil || has {
		t.Fatalf("HasRole after remove: err=%v has=%v", err, has)
	}
}
