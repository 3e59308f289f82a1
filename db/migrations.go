package db

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
)

// MigrateConfig defines the configuration needed for database migrations
type MigrateConfig struct {
	DBURL string
}

// Migrate initializes the database connection and runs any pending
// migrations from db/migrations.
func Migrate(cfg MigrateConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := InitDB(ctx, cfg.DBURL); err != nil {
		return errors.New("failed to initialize database: " + err.Error())
	}

	migrationsDir, err := filepath.Abs("db/migrations")
	if err != nil {
		return errors.New("failed to get absolute path to migrations directory: " + err.Error())
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.New("failed to set dialect: " + err.Error())
	}

	if err := goose.Up(DB, migrationsDir); err != nil {
		return errors.New("failed to run migrations: " + err.Error())
	}

	log.Println("database migration check complete. All migrations are up to date")
	return nil
}
