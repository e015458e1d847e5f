package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

// OpenSQLite opens a file-backed database for local runs.
func OpenSQLite(path string, logg *logger.Logger) (*gorm.DB, error) {
	if path == "" {
		path = "taskflow.db"
	}
	logg.With("service", "SQLiteService").Info("Opening SQLite database", "path", path)
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	return db, nil
}
