package project

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type TaskRepo interface {
	Create(dbc dbctx.Context, t *domain.ProjectTask) error
	GetByID(dbc dbctx.Context, taskID uuid.UUID) (*domain.ProjectTask, error)
	Update(dbc dbctx.Context, t *domain.ProjectTask) error
	ReplaceAssignees(dbc dbctx.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	AddAssignees(dbc dbctx.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	RemoveAssignees(dbc dbctx.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	Delete(dbc dbctx.Context, taskID uuid.UUID) error
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*domain.ProjectTask, error)
	ListByProjectAssignedTo(dbc dbctx.Context, projectID, userID uuid.UUID) ([]*domain.ProjectTask, error)
	ListAll(dbc dbctx.Context) ([]*domain.ProjectTask, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.ProjectTask, error)
	RemoveUserFromAll(dbc dbctx.Context, userID uuid.UUID) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (tr *taskRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = tr.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (tr *taskRepo) Create(dbc dbctx.Context, t *domain.ProjectTask) error {
	if err := tr.tx(dbc).Omit(clause.Associations).Create(t).Error; err != nil {
		return err
	}
	return tr.AddAssignees(dbc, t.ID, t.AssigneeIDs())
}

// GetByID preloads assignees and the parent project with its members.
// Returns nil without error when missing.
func (tr *taskRepo) GetByID(dbc dbctx.Context, taskID uuid.UUID) (*domain.ProjectTask, error) {
	var t domain.ProjectTask
	err := tr.tx(dbc).
		Preload("Assignees").
		Preload("Project").
		Preload("Project.Members").
		Where("id = ?", taskID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update replaces every mutable field, including clearing the due date.
func (tr *taskRepo) Update(dbc dbctx.Context, t *domain.ProjectTask) error {
	return tr.tx(dbc).
		Model(&domain.ProjectTask{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"name":         t.Name,
			"description":  t.Description,
			"is_completed": t.IsCompleted,
			"due_date":     t.DueDate,
		}).Error
}

func (tr *taskRepo) ReplaceAssignees(dbc dbctx.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if err := tr.tx(dbc).
		Where("task_id = ?", taskID).
		Delete(&domain.TaskAssignee{}).Error; err != nil {
		return err
	}
	return tr.AddAssignees(dbc, taskID, userIDs)
}

func (tr *taskRepo) AddAssignees(dbc dbctx.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]domain.TaskAssignee, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, domain.TaskAssignee{TaskID: taskID, UserID: id})
	}
	return tr.tx(dbc).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (tr *taskRepo) RemoveAssignees(dbc dbctx.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return tr.tx(dbc).
		Where("task_id = ? AND user_id IN ?", taskID, userIDs).
		Delete(&domain.TaskAssignee{}).Error
}

func (tr *taskRepo) Delete(dbc dbctx.Context, taskID uuid.UUID) error {
	db := tr.tx(dbc)
	if err := db.Where("task_id = ?", taskID).Delete(&domain.TaskAssignee{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", taskID).Delete(&domain.ProjectTask{}).Error
}

func (tr *taskRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*domain.ProjectTask, error) {
	var results []*domain.ProjectTask
	if err := tr.preloaded(dbc).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) ListByProjectAssignedTo(dbc dbctx.Context, projectID, userID uuid.UUID) ([]*domain.ProjectTask, error) {
	var results []*domain.ProjectTask
	if err := tr.preloaded(dbc).
		Where("project_id = ? AND id IN (?)", projectID, tr.assignedTo(dbc, userID)).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) ListAll(dbc dbctx.Context) ([]*domain.ProjectTask, error) {
	var results []*domain.ProjectTask
	if err := tr.preloaded(dbc).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListForUser returns tasks in projects the user owns plus tasks assigned to them.
func (tr *taskRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.ProjectTask, error) {
	var results []*domain.ProjectTask
	owned := tr.tx(dbc).Model(&domain.Project{}).Select("id").Where("owner_id = ?", userID)
	if err := tr.preloaded(dbc).
		Where("project_id IN (?) OR id IN (?)", owned, tr.assignedTo(dbc, userID)).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) RemoveUserFromAll(dbc dbctx.Context, userID uuid.UUID) error {
	return tr.tx(dbc).
		Where("user_id = ?", userID).
		Delete(&domain.TaskAssignee{}).Error
}

func (tr *taskRepo) assignedTo(dbc dbctx.Context, userID uuid.UUID) *gorm.DB {
	return tr.tx(dbc).Model(&domain.TaskAssignee{}).Select("task_id").Where("user_id = ?", userID)
}

func (tr *taskRepo) preloaded(dbc dbctx.Context) *gorm.DB {
	return tr.tx(dbc).Preload("Assignees")
}
