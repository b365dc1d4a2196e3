package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/edubridge/volunteer-hub-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client against the main store.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return open(cfg, "")
}

// NewPostgresSchema returns a client whose search_path is pinned to a tenant
// schema. Every statement issued through it is scoped to that district store.
func NewPostgresSchema(cfg config.DatabaseConfig, schema string) (*sqlx.DB, error) {
	return open(cfg, schema)
}

func open(cfg config.DatabaseConfig, schema string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	if schema != "" {
		dsn += fmt.Sprintf(" options='-csearch_path=%s'", schema)
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
