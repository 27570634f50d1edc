package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLite is a SQLite-backed Store. It is the default backend: a single
// local file, no extra process.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed store on an open database handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Init creates the cache table if it does not exist.
func (c *SQLite) Init(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS metadata_cache (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_metadata_cache_expires_at ON metadata_cache(expires_at)`)
	if err != nil {
		return fmt.Errorf("create cache index: %w", err)
	}
	return nil
}

// Get retrieves a cached value by key.
// Returns nil, false if not found or expired.
func (c *SQLite) Get(ctx context.Context, key string) ([]byte, bool) {
	var value string
	var expiresAt time.Time

	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM metadata_cache WHERE key = ?", key,
	).Scan(&value, &expiresAt)

	if err != nil || time.Now().After(expiresAt) {
		return nil, false
	}

	return []byte(value), true
}

// Set stores a value with the given TTL.
func (c *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO metadata_cache (key, value, expires_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, string(value), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached value.
func (c *SQLite) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM metadata_cache WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Clear removes all entries, expired or not.
// Returns the number of entries removed.
func (c *SQLite) Clear(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM metadata_cache")
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return result.RowsAffected()
}

// Prune removes all expired entries.
// Returns the number of entries removed.
func (c *SQLite) Prune(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM metadata_cache WHERE expires_at < ?", time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}
