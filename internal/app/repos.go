package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/data/repos"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserRole  repos.UserRoleRepo
	UserToken repos.UserTokenRepo
	Project   repos.ProjectRepo
	Task      repos.TaskRepo
	Activity  repos.ActivityRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserRole:  repos.NewUserRoleRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		Project:   repos.NewProjectRepo(db, log),
		Task:      repos.NewTaskRepo(db, log),
		Activity:  repos.NewActivityRepo(db, log),
	}
}
