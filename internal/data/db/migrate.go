package db

import (
	"github.com/yungbote/taskflow-backend/internal/domain"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		// identity
		&domain.User{},
		&domain.UserRole{},
		&domain.UserToken{},

		// projects
		&domain.Project{},
		&domain.ProjectMember{},
		&domain.ProjectTask{},
		&domain.TaskAssignee{},
		&domain.ActivityEntry{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
