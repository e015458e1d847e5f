package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/data/repos/auth"
	"github.com/yungbote/taskflow-backend/internal/data/repos/project"
	"github.com/yungbote/taskflow-backend/internal/data/repos/user"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserRoleRepo = user.UserRoleRepo
type UserTokenRepo = auth.UserTokenRepo

type ProjectRepo = project.ProjectRepo
type TaskRepo = project.TaskRepo
type ActivityRepo = project.ActivityRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return user.NewUserRepo(db, log)
}

func NewUserRoleRepo(db *gorm.DB, log *logger.Logger) UserRoleRepo {
	return user.NewUserRoleRepo(db, log)
}

func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, log)
}

func NewProjectRepo(db *gorm.DB, log *logger.Logger) ProjectRepo {
	return project.NewProjectRepo(db, log)
}

func NewTaskRepo(db *gorm.DB, log *logger.Logger) TaskRepo {
	return project.NewTaskRepo(db, log)
}

func NewActivityRepo(db *gorm.DB, log *logger.Logger) ActivityRepo {
	return project.NewActivityRepo(db, log)
}
