// Package cache stores fetched remote records in a SQLite database so
// repeated runs over the same papers do not re-query the remote services.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache wraps a SQLite database of remote records keyed by source and
// query string.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			source TEXT NOT NULL,
			query TEXT NOT NULL,
			payload TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (source, query)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached payload for a source/query pair.
func (c *Cache) Get(source, query string) (string, bool, error) {
	var payload string
	err := c.db.QueryRow(
		`SELECT payload FROM records WHERE source = ? AND query = ?`,
		source, query,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache: %w", err)
	}
	return payload, true, nil
}

// Put stores a payload for a source/query pair, replacing any previous one.
func (c *Cache) Put(source, query, payload string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO records (source, query, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		source, query, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
