package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	var one int
	return s.db.GetContext(ctx, &one, "SELECT 1")
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		listing_id TEXT NOT NULL,
		checkin DATE NOT NULL,
		checkout DATE NOT NULL,
		gross_total DOUBLE PRECISION NOT NULL DEFAULT 0,
		channel TEXT NOT NULL DEFAULT '',
		guest_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_listing ON reservations (listing_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_span ON reservations (checkin, checkout)`,
	`CREATE TABLE IF NOT EXISTS calendars (
		id BIGSERIAL PRIMARY KEY,
		listing_id TEXT NOT NULL,
		date DATE NOT NULL,
		reserved BOOLEAN NOT NULL DEFAULT FALSE,
		source TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (listing_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_events (
		id BIGSERIAL PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE,
		received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		raw JSONB
	)`,
}

// EnsureSchema creates the tables on startup when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
