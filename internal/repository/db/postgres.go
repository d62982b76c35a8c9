package db

import (
	"database/sql"
	"procurement/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func NewPostgresDB(cfg *config.PostgresConfig, log *zap.Logger) (*sql.DB, error) {
	log.Info("connecting to postgres")
	db, err := sql.Open("postgres", cfg.Conn)

	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
