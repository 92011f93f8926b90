// Package repository is the persistence collaborator: a thin gorm store for
// normalized invoice records.
package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite" // pure Go sqlite driver
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tobi-ak/invoiceflow/internal/common"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg common.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		db  *gorm.DB
		err error
	)
	gcfg := &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	}

	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN), gcfg)
	case "sqlite":
		var conn *sql.DB
		conn, err = sql.Open("sqlite", cfg.SQLitePath+"?_journal=WAL&_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db, err = gorm.Open(sqlite.Dialector{Conn: conn}, gcfg)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", "unknown DB_DRIVER: "+cfg.Driver, common.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if err := db.AutoMigrate(&Invoice{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("repository.open.ok", "driver", cfg.Driver)
	return db, nil
}
