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

type ProjectRepo interface {
	Create(dbc dbctx.Context, p *domain.Project) error
	GetByID(dbc dbctx.Context, projectID uuid.UUID) (*domain.Project, error)
	ExistsOwnedBy(dbc dbctx.Context, projectID, ownerID uuid.UUID) (bool, error)
	Update(dbc dbctx.Context, p *domain.Project) error
	ReplaceMembers(dbc dbctx.Context, projectID uuid.UUID, userIDs []uuid.UUID) error
	AddMembers(dbc dbctx.Context, projectID uuid.UUID, userIDs []uuid.UUID) error
	RemoveMembers(dbc dbctx.Context, projectID uuid.UUID, userIDs []uuid.UUID) error
	Delete(dbc dbctx.Context, projectID uuid.UUID) error
	ListAll(dbc dbctx.Context) ([]*domain.Project, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Project, error)
	CountOwnedBy(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	RemoveUserFromAll(dbc dbctx.Context, userID uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (pr *projectRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(dbc.Ctx)
}

// Create inserts the project row and its explicit member rows.
func (pr *projectRepo) Create(dbc dbctx.Context, p *domain.Project) error {
	if err := pr.tx(dbc).Omit(clause.Associations).Create(p).Error; err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	if err := pr.AddMembers(dbc, p.ID, ids); err != nil {
		return err
	}
	return nil
}

// GetByID preloads owner and members. Returns nil without error when missing.
func (pr *projectRepo) GetByID(dbc dbctx.Context, projectID uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	err := pr.tx(dbc).
		Preload("Owner").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", projectID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (pr *projectRepo) ExistsOwnedBy(dbc dbctx.Context, projectID, ownerID uuid.UUID) (bool, error) {
	var count int64
	if err := pr.tx(dbc).
		Model(&domain.Project{}).
		Where("id = ? AND owner_id = ?", projectID, ownerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes the mutable fields. Owner is never changed.
func (pr *projectRepo) Update(dbc dbctx.Context, p *domain.Project) error {
	return pr.tx(dbc).
		Model(&domain.Project{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"start_date":  p.StartDate,
			"end_date":    p.EndDate,
		}).Error
}

func (pr *projectRepo) ReplaceMembers(dbc dbctx.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if err := pr.tx(dbc).
		Where("project_id = ?", projectID).
		Delete(&domain.ProjectMember{}).Error; err != nil {
		return err
	}
	return pr.AddMembers(dbc, projectID, userIDs)
}

func (pr *projectRepo) AddMembers(dbc dbctx.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]domain.ProjectMember, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, domain.ProjectMember{ProjectID: projectID, UserID: id})
	}
	return pr.tx(dbc).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (pr *projectRepo) RemoveMembers(dbc dbctx.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return pr.tx(dbc).
		Where("project_id = ? AND user_id IN ?", projectID, userIDs).
		Delete(&domain.ProjectMember{}).Error
}

// Delete removes the project with its tasks, assignments, memberships and
// activity. Callers run it inside a transaction.
func (pr *projectRepo) Delete(dbc dbctx.Context, projectID uuid.UUID) error {
	db := pr.tx(dbc)
	taskIDs := db.Model(&domain.ProjectTask{}).Select("id").Where("project_id = ?", projectID)
	steps := []func() error{
		func() error {
			return db.Where("task_id IN (?)", taskIDs).Delete(&domain.TaskAssignee{}).Error
		},
		func() error {
			return db.Where("project_id = ?", projectID).Delete(&domain.ProjectTask{}).Error
		},
		func() error {
			return db.Where("project_id = ?", projectID).Delete(&domain.ProjectMember{}).Error
		},
		func() error {
			return db.Where("project_id = ?", projectID).Delete(&domain.ActivityEntry{}).Error
		},
		func() error {
			return db.Where("id = ?", projectID).Delete(&domain.Project{}).Error
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (pr *projectRepo) ListAll(dbc dbctx.Context) ([]*domain.Project, error) {
	var results []*domain.Project
	if err := pr.preloaded(dbc).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListForUser returns projects the user owns or is an explicit member of.
func (pr *projectRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Project, error) {
	var results []*domain.Project
	memberOf := pr.tx(dbc).Model(&domain.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)
	if err := pr.preloaded(dbc).
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *projectRepo) CountOwnedBy(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := pr.tx(dbc).
		Model(&domain.Project{}).
		Where("owner_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (pr *projectRepo) RemoveUserFromAll(dbc dbctx.Context, userID uuid.UUID) error {
	return pr.tx(dbc).
		Where("user_id = ?", userID).
		Delete(&domain.ProjectMember{}).Error
}

func (pr *projectRepo) preloaded(dbc dbctx.Context) *gorm.DB {
	return pr.tx(dbc).
		Preload("Owner").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}
