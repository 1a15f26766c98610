// Package catalog persists repositories, corpus runs, analysis runs, and
// prompts in a single SQLite database.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Catalog owns the SQLite connection and the stores built on it.
type Catalog struct {
	path string
	db   *sql.DB

	Repositories *RepositoryStore
	Runs         *RunStore
	Prompts      *PromptStore
}

// Open opens (or creates) the catalog database at path.
// The parent directory is created if missing, the schema is created on a
// fresh database, and default prompts are seeded idempotently.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// Enable foreign keys (off by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	c := &Catalog{
		path:         path,
		db:           db,
		Repositories: NewRepositoryStore(db),
		Runs:         NewRunStore(db),
		Prompts:      NewPromptStore(db),
	}

	if err := c.Prompts.SeedDefaults(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed prompts: %w", err)
	}

	return c, nil
}

// Path returns the database file path the catalog was opened with.
func (c *Catalog) Path() string {
	return c.path
}

// DB returns the underlying database connection.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close catalog database: %w", err)
		}
	}
	return nil
}
