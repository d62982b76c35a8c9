package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/config"

	postgres "procurement/internal/repository/db"

	"go.uber.org/zap"
)

type Repository struct {
	db  *sql.DB
	cfg *config.PostgresConfig
	log *zap.Logger
}

var _ Store = (*Repository)(nil)

func NewRepository(db *sql.DB, cfg *config.PostgresConfig, log *zap.Logger) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  db,
		cfg: cfg,
		log: log,
	}

	if repo.log == nil {
		repo.log = zap.NewNop()
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = postgres.NewPostgresDB(repo.cfg, repo.log)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open postgres db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (repo *Repository) MigrateUp() error {
	err := postgres.MigrateUp(repo.db, repo.cfg.MigrationsURL, repo.log)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	err := postgres.MigrateDown(repo.db, repo.cfg.MigrationsURL, repo.log)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

// Atomic runs fn inside one database transaction.
func (repo *Repository) Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository.Repository.Atomic: failed to start transaction: %w", err)
	}

	err = fn(ctx, &queries{tx: tx})
	if err != nil {
		return wrapRollbackErr(tx, err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("repository.Repository.Atomic: failed to commit transaction: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown {
		migErr = repo.MigrateDown()
	}

	err := repo.db.Close()
	return errors.Join(migErr, err)
}

// queries implements Tx on top of a single *sql.Tx.
type queries struct {
	tx *sql.Tx
}

var _ Tx = (*queries)(nil)

//// Service

func wrapRollbackErr(tx *sql.Tx, err error) error {
	rollerr := tx.Rollback()
	if rollerr == nil {
		return err
	}
	return fmt.Errorf("failed to rollback transaction after previous error: %w, %w", rollerr, err)
}

// lockKey folds an int64 id into the int4 space pg_advisory_xact_lock(int, int) expects.
func lockKey(id int64) int32 {
	return int32(id ^ (id >> 32))
}

//// Test utils

func (repo *Repository) TestGetDB() *sql.DB {
	return repo.db
}
