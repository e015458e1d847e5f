package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is owned by exactly one user. Members holds the explicit
// (non-owner) members only; the owner is implicitly a member.
type Project struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:100" json:"name"`
	Description string          `gorm:"size:500" json:"description"`
	StartDate   time.Time       `gorm:"not null" json:"start_date"`
	EndDate     time.Time       `gorm:"not null" json:"end_date"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"owner_id"`
	Owner       *User           `gorm:"foreignKey:OwnerID" json:"-"`
	Members     []ProjectMember `gorm:"foreignKey:ProjectID" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Project) TableName() string { return "project" }

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Project) IsOwner(userID uuid.UUID) bool {
	return p != nil && p.OwnerID == userID
}

// HasMember reports explicit membership; it is false for the owner.
func (p *Project) HasMember(userID uuid.UUID) bool {
	if p == nil {
		return false
	}
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs lists the owner first, then explicit members.
func (p *Project) MemberIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(p.Members)+1)
	out = append(out, p.OwnerID)
	for _, m := range p.Members {
		if m.UserID != p.OwnerID {
			out = append(out, m.UserID)
		}
	}
	return out
}

type ProjectMember struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectMember) TableName() string { return "project_member" }

type ProjectTask struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:100" json:"name"`
	Description string         `gorm:"size:2000" json:"description"`
	IsCompleted bool           `gorm:"not null;default:false" json:"is_completed"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	Assignees   []TaskAssignee `gorm:"foreignKey:TaskID" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (ProjectTask) TableName() string { return "project_task" }

func (t *ProjectTask) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *ProjectTask) IsAssigned(userID uuid.UUID) bool {
	if t == nil {
		return false
	}
	for _, a := range t.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

func (t *ProjectTask) AssigneeIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		out = append(out, a.UserID)
	}
	return out
}

type TaskAssignee struct {
	TaskID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"task_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (TaskAssignee) TableName() string { return "task_assignee" }

// ActivityEntry records a committed mutation on a project or one of its tasks.
type ActivityEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	TaskID    *uuid.UUID     `gorm:"type:uuid;index" json:"task_id,omitempty"`
	ActorID   uuid.UUID      `gorm:"type:uuid;not null" json:"actor_id"`
	Action    string         `gorm:"not null;size:64" json:"action"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (ActivityEntry) TableName() string { return "activity_entry" }

func (a *ActivityEntry) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

const (
	ActionProjectCreated        = "project.created"
	ActionProjectUpdated        = "project.updated"
	ActionProjectDeleted        = "project.deleted"
	ActionProjectMembersAdded   = "project.members_added"
	ActionProjectMembersRemoved = "project.members_removed"
	ActionTaskCreated           = "task.created"
	ActionTaskUpdated           = "task.updated"
	ActionTaskDeleted           = "task.deleted"
	ActionTaskAssigneesAdded    = "task.assignees_added"
	ActionTaskAssigneesRemoved  = "task.assignees_removed"
)
