package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func MigrateUp(db *sql.DB, migrationsURL string, log *zap.Logger) error {
	log.Info("migrating up", zap.String("source", migrationsURL))

	m, err := newMigrate(db, migrationsURL)
	if err != nil {
		return fmt.Errorf("db.MigrateUp: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("db.MigrateUp: %w", err)
	}

	return nil
}

func MigrateDown(db *sql.DB, migrationsURL string, log *zap.Logger) error {
	log.Info("migrating down", zap.String("source", migrationsURL))

	m, err := newMigrate(db, migrationsURL)
	if err != nil {
		return fmt.Errorf("db.MigrateDown: %w", err)
	}

	err = m.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("db.MigrateDown: %w", err)
	}

	return nil
}

func newMigrate(db *sql.DB, migrationsURL string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, err
	}

	return migrate.NewWithDatabaseInstance(migrationsURL, "postgres", driver)
}
