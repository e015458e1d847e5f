package project

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type ActivityRepo interface {
	Create(dbc dbctx.Context, entries []*domain.ActivityEntry) ([]*domain.ActivityEntry, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID, limit int) ([]*domain.ActivityEntry, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (ar *activityRepo) Create(dbc dbctx.Context, entries []*domain.ActivityEntry) ([]*domain.ActivityEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(entries) == 0 {
		return []*domain.ActivityEntry{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByProject returns the newest entries first. A non-positive limit means no limit.
func (ar *activityRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*domain.ActivityEntry
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
