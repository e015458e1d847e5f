package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*domain.User) ([]*domain.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*domain.User, error)
	GetByEmails(dbc dbctx.Context, emails []string) ([]*domain.User, error)
	GetByUserName(dbc dbctx.Context, userName string) (*domain.User, error)
	ListAll(dbc dbctx.Context) ([]*domain.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	UserNameExists(dbc dbctx.Context, userName string) (bool, error)
	FullDeleteByIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*domain.User) ([]*domain.User, error) {
	if len(users) == 0 {
		return []*domain.User{}, nil
	}
	for _, u := range users {
		u.Email = NormalizeEmail(u.Email)
	}
	if err := ur.tx(dbc).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*domain.User, error) {
	var results []*domain.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := ur.tx(dbc).
		Preload("Roles").
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, emails []string) ([]*domain.User, error) {
	var results []*domain.User
	if len(emails) == 0 {
		return results, nil
	}
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		normalized = append(normalized, NormalizeEmail(e))
	}
	if err := ur.tx(dbc).
		Preload("Roles").
		Where("email IN ?", normalized).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByUserName returns nil without error when no user has the handle.
func (ur *userRepo) GetByUserName(dbc dbctx.Context, userName string) (*domain.User, error) {
	var u domain.User
	err := ur.tx(dbc).
		Preload("Roles").
		Where("user_name = ?", strings.TrimSpace(userName)).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) ListAll(dbc dbctx.Context) ([]*domain.User, error) {
	var results []*domain.User
	if err := ur.tx(dbc).
		Preload("Roles").
		Order("user_name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	var count int64
	if err := ur.tx(dbc).
		Model(&domain.User{}).
		Where("email = ?", NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UserNameExists(dbc dbctx.Context, userName string) (bool, error) {
	var count int64
	if err := ur.tx(dbc).
		Model(&domain.User{}).
		Where("user_name = ?", strings.TrimSpace(userName)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) FullDeleteByIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return ur.tx(dbc).
		Where("id IN ?", userIDs).
		Delete(&domain.User{}).Error
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
