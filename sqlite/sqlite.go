// Package sqlite provides SQLite-based storage implementations for opra services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// WAL is ~7x faster for writes and allows concurrent reads during writes.
	// Trade-off: creates additional -wal and -shm files alongside the database.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS municipalities (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			county TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT 'NJ',
			website_url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS ordinances (
			id TEXT PRIMARY KEY,
			municipality_id TEXT NOT NULL REFERENCES municipalities(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			code TEXT NOT NULL DEFAULT '',
			full_text TEXT NOT NULL,
			source_url TEXT NOT NULL DEFAULT '',
			effective_date TEXT,
			confidence TEXT NOT NULL DEFAULT 'low',
			content_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			ordinance_id TEXT NOT NULL REFERENCES ordinances(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL,
			section_number TEXT NOT NULL DEFAULT '',
			section_title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			embedding BLOB,
			start_char INTEGER NOT NULL DEFAULT 0,
			end_char INTEGER NOT NULL DEFAULT 0,
			token_count INTEGER NOT NULL DEFAULT 0,
			UNIQUE (ordinance_id, chunk_index)
		);

		CREATE TABLE IF NOT EXISTS custodians (
			id TEXT PRIMARY KEY,
			municipality_id TEXT NOT NULL REFERENCES municipalities(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			municipality_id TEXT NOT NULL REFERENCES municipalities(id),
			ordinance_id TEXT NOT NULL REFERENCES ordinances(id),
			custodian_id TEXT NOT NULL DEFAULT '',
			number TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			categories TEXT NOT NULL DEFAULT '[]',
			sections TEXT NOT NULL DEFAULT '[]',
			text TEXT NOT NULL DEFAULT '',
			pdf_url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_ordinances_municipality_id ON ordinances(municipality_id);
		CREATE INDEX IF NOT EXISTS idx_ordinances_content_hash ON ordinances(content_hash);
		CREATE INDEX IF NOT EXISTS idx_chunks_ordinance_id ON chunks(ordinance_id);
		CREATE INDEX IF NOT EXISTS idx_custodians_municipality_id ON custodians(municipality_id);
		CREATE INDEX IF NOT EXISTS idx_requests_ordinance_id ON requests(ordinance_id);
		CREATE INDEX IF NOT EXISTS idx_requests_municipality_id ON requests(municipality_id);
	`

	_, err := db.db.Exec(schema)
	return err
}
