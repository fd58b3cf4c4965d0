package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// EnsureSchema creates the scan journal table when it does not exist yet.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scan_events (
			id               UUID PRIMARY KEY,
			index_number     TEXT NOT NULL,
			name             TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			occurred_at      TIMESTAMPTZ NOT NULL,
			message_status   TEXT NOT NULL DEFAULT 'pending',
			parent_telephone TEXT NOT NULL DEFAULT '',
			student_email    TEXT NOT NULL DEFAULT '',
			address          TEXT NOT NULL DEFAULT '',
			device_info      TEXT NOT NULL DEFAULT '',
			location         TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS scan_events_occurred_at_idx ON scan_events (occurred_at DESC);
	`)
	return err
}

// Healthy verifies database connectivity.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
