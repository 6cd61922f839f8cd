package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	return initSchema(db, "sqlite", []string{
		`
	CREATE TABLE IF NOT EXISTS routes (
		route_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		points TEXT NOT NULL,
		distance_meters REAL NOT NULL,
		elevation_gain_meters REAL NOT NULL,
		elevation_loss_meters REAL NOT NULL,
		created_at TEXT NOT NULL
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_routes_created_at
	ON routes(created_at);
	`,
	})
}

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	return initSchema(db, "postgres", []string{
		`
	CREATE TABLE IF NOT EXISTS routes (
		route_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		points JSONB NOT NULL,
		distance_meters DOUBLE PRECISION NOT NULL,
		elevation_gain_meters DOUBLE PRECISION NOT NULL,
		elevation_loss_meters DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_routes_created_at
	ON routes(created_at);
	`,
	})
}

func initSchema(db *sql.DB, dialect string, statements []string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init %s schema: begin tx: %w", dialect, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init %s schema: exec statement #%d: %w", dialect, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init %s schema: commit tx: %w", dialect, err)
	}

	return nil
}
