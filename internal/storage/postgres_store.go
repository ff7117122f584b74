package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/composable-commerce/storefront/pkg/types"
)

// Ensure PostgresStore implements SubscriberStore
var _ SubscriberStore = (*PostgresStore)(nil)

const createSubscribersTable = `CREATE TABLE IF NOT EXISTS newsletter_subscribers (
	email TEXT PRIMARY KEY,
	source TEXT NOT NULL DEFAULT '',
	locale TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore persists subscribers in PostgreSQL through the pgx driver
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dsn, verifies the connection and ensures the
// schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	store := NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an existing connection pool
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the subscriber table when missing
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSubscribersTable); err != nil {
		return fmt.Errorf("failed to create subscribers table: %w", err)
	}
	return nil
}

// Add inserts a subscriber; an existing email is left untouched
func (s *PostgresStore) Add(ctx context.Context, sub types.Subscriber) (bool, error) {
	email := normalizeEmail(sub.Email)
	if email == "" {
		return false, ErrInvalidEmail
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscribers (email, source, locale, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING`,
		email, sub.Source, sub.Locale, sub.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert subscriber: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// Exists checks whether an email is subscribed
func (s *PostgresStore) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM newsletter_subscribers WHERE email = $1)`,
		normalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up subscriber: %w", err)
	}
	return exists, nil
}

// List returns subscribers newest first
func (s *PostgresStore) List(ctx context.Context, limit int) ([]types.Subscriber, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT email, source, locale, created_at FROM newsletter_subscribers
		 ORDER BY created_at DESC, email ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []types.Subscriber
	for rows.Next() {
		var sub types.Subscriber
		if err := rows.Scan(&sub.Email, &sub.Source, &sub.Locale, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscribers: %w", err)
	}
	return subs, nil
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
