// Package database manages the SQLite connection lifecycle and schema
// migration.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sightline/internal/config"
	"sightline/internal/events"
	"sightline/internal/projects"
)

// DBManager owns the GORM connection.
type DBManager struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

func NewDBManager(cfg *config.Config, logger *slog.Logger) *DBManager {
	return &DBManager{cfg: cfg, logger: logger}
}

// Init opens the database with WAL and busy-timeout pragmas applied.
func (dm *DBManager) Init() error {
	if err := os.MkdirAll(filepath.Dir(dm.cfg.DatabaseName), 0o755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", dm.cfg.DatabaseName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("accessing sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(dm.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(dm.cfg.GetMaxIdleConns())

	db.Exec("PRAGMA foreign_keys = ON")

	dm.db = db
	dm.logger.Info("database initialized", slog.String("path", dm.cfg.DatabaseName))
	return nil
}

// GetConnection returns the shared GORM handle.
func (dm *DBManager) GetConnection() *gorm.DB {
	return dm.db
}

// MigrateDatabase runs schema migrations in a transaction.
func (dm *DBManager) MigrateDatabase() error {
	if dm.db == nil {
		return gorm.ErrInvalidDB
	}

	err := dm.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&events.Event{},
			&projects.Project{},
		)
	})
	if err != nil {
		dm.logger.Error("failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	dm.logger.Info("database migration completed")
	return nil
}

// Close releases the underlying connection pool.
func (dm *DBManager) Close() error {
	if dm.db == nil {
		return nil
	}
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
