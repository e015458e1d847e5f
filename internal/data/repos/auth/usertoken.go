package auth

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*domain.UserToken) ([]*domain.UserToken, error)
	GetByAccessToken(dbc dbctx.Context, accessToken string) (*domain.UserToken, error)
	GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*domain.UserToken, error)
	FullDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error
	FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*domain.UserToken) ([]*domain.UserToken, error) {
	if len(userTokens) == 0 {
		return []*domain.UserToken{}, nil
	}
	if err := utr.tx(dbc).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (utr *userTokenRepo) GetByAccessToken(dbc dbctx.Context, accessToken string) (*domain.UserToken, error) {
	return utr.first(dbc, "access_token = ?", accessToken)
}

func (utr *userTokenRepo) GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*domain.UserToken, error) {
	return utr.first(dbc, "refresh_token = ?", refreshToken)
}

// first returns nil without error when nothing matches.
func (utr *userTokenRepo) first(dbc dbctx.Context, query string, arg any) (*domain.UserToken, error) {
	var tok domain.UserToken
	err := utr.tx(dbc).Where(query, arg).First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (utr *userTokenRepo) FullDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return utr.tx(dbc).Where("id IN ?", tokenIDs).Delete(&domain.UserToken{}).Error
}

func (utr *userTokenRepo) FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return utr.tx(dbc).Where("user_id IN ?", userIDs).Delete(&domain.UserToken{}).Error
}
