package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/domain"
)

// SeedUser inserts a user with the handle as the local part of the email.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, handle string, roles ...string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:        uuid.New(),
		UserName:  handle,
		Email:     handle + "@example.com",
		Password:  "pw",
		FirstName: "First" + handle,
		LastName:  "Last",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	for _, r := range roles {
		row := &domain.UserRole{UserID: u.ID, Role: r}
		if err := tx.WithContext(ctx).Create(row).Error; err != nil {
			tb.Fatalf("seed role: %v", err)
		}
		u.Roles = append(u.Roles, *row)
	}
	return u
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, owner *domain.User, members ...*domain.User) *domain.Project {
	tb.Helper()
	p := &domain.Project{
		ID:        uuid.New(),
		Name:      "project",
		StartDate: time.Now().UTC(),
		EndDate:   time.Now().UTC().Add(24 * time.Hour),
		OwnerID:   owner.ID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	for _, m := range members {
		row := domain.ProjectMember{ProjectID: p.ID, UserID: m.ID}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			tb.Fatalf("seed member: %v", err)
		}
		p.Members = append(p.Members, row)
	}
	return p
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, project *domain.Project, assignees ...*domain.User) *domain.ProjectTask {
	tb.Helper()
	task := &domain.ProjectTask{
		ID:        uuid.New(),
		Name:      "task",
		ProjectID: project.ID,
	}
	if err := tx.WithContext(ctx).Create(task).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	for _, a := range assignees {
		row := domain.TaskAssignee{TaskID: task.ID, UserID: a.ID}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			tb.Fatalf("seed assignee: %v", err)
		}
		task.Assignees = append(task.Assignees, row)
	}
	return task
}
