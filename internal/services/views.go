package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/domain"
)

// ProjectSpec is the caller-supplied content of a project. On update the
// member list replaces the explicit membership wholesale.
type ProjectSpec struct {
	Name         string    `json:"name" validate:"required,max=100"`
	Description  string    `json:"description" validate:"max=500"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	MemberEmails []string  `json:"member_emails" validate:"omitempty,dive,required"`
}

func (s *ProjectSpec) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	s.StartDate = s.StartDate.UTC()
	s.EndDate = s.EndDate.UTC()
}

// TaskSpec is the caller-supplied content of a task. A nil AssigneeEmails
// leaves assignees untouched on update; an empty slice clears them.
type TaskSpec struct {
	Name           string     `json:"name" validate:"required,max=100"`
	Description    string     `json:"description" validate:"max=2000"`
	IsCompleted    bool       `json:"is_completed"`
	DueDate        *time.Time `json:"due_date"`
	AssigneeEmails []string   `json:"assignee_emails" validate:"omitempty,dive,required"`
}

func (s *TaskSpec) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	if s.DueDate != nil {
		due := s.DueDate.UTC()
		s.DueDate = &due
	}
}

type ProjectView struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	OwnerName   string      `json:"owner_name"`
	MemberIDs   []uuid.UUID `json:"member_ids"`
}

func newProjectView(p *domain.Project) *ProjectView {
	return &ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate.UTC(),
		EndDate:     p.EndDate.UTC(),
		OwnerID:     p.OwnerID,
		OwnerName:   p.Owner.DisplayName(),
		MemberIDs:   p.MemberIDs(),
	}
}

type TaskView struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	IsCompleted bool        `json:"is_completed"`
	CreatedAt   time.Time   `json:"created_at"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	ProjectID   uuid.UUID   `json:"project_id"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids"`
}

func newTaskView(t *domain.ProjectTask) *TaskView {
	v := &TaskView{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC(),
		ProjectID:   t.ProjectID,
		AssigneeIDs: t.AssigneeIDs(),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		v.DueDate = &due
	}
	return v
}

func newTaskViews(tasks []*domain.ProjectTask) []*TaskView {
	out := make([]*TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskView(t))
	}
	return out
}

type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Roles     []string  `json:"roles"`
}

func newUserSummary(u *domain.User) *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.RoleLabels(),
	}
}
