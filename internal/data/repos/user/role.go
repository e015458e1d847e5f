package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type UserRoleRepo interface {
	HasRole(dbc dbctx.Context, userID uuid.UUID, role string) (bool, error)
	Add(dbc dbctx.Context, userID uuid.UUID, role string) error
	Remove(dbc dbctx.Context, userID uuid.UUID, role string) error
	FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
}

type userRoleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRoleRepo(db *gorm.DB, baseLog *logger.Logger) UserRoleRepo {
	return &userRoleRepo{db: db, log: baseLog.With("repo", "UserRoleRepo")}
}

func (rr *userRoleRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (rr *userRoleRepo) HasRole(dbc dbctx.Context, userID uuid.UUID, role string) (bool, error) {
	var count int64
	if err := rr.tx(dbc).
		Model(&domain.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add is idempotent.
func (rr *userRoleRepo) Add(dbc dbctx.Context, userID uuid.UUID, role string) error {
	has, err := rr.HasRole(dbc, userID, role)
	if err != nil || has {
		return err
	}
	return rr.tx(dbc).Create(&domain.UserRole{UserID: userID, Role: role}).Error
}

func (rr *userRoleRepo) Remove(dbc dbctx.Context, userID uuid.UUID, role string) error {
	return rr.tx(dbc).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&domain.UserRole{}).Error
}

func (rr *userRoleRepo) FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return rr.tx(dbc).
		Where("user_id IN ?", userIDs).
		Delete(&domain.UserRole{}).Error
}
