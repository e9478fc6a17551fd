package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"conceptblog/internal/ledger"
	"conceptblog/internal/logger"
)

const sqlitePrefix = "sqlite://"

// Open connects the relational side store and migrates its tables.
// DATABASE_URL values starting with sqlite:// select a local SQLite file;
// anything else is handed to the Postgres driver as a DSN.
func Open(dsn string, log *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		if path == "" {
			path = "ledger.db"
		}
		dialector = sqlite.Open(path)
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("Database connection established", "dialect", dialector.Name())

	if err := db.AutoMigrate(&ledger.ReconcileIssue{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info("Database migration completed")
	return db, nil
}
