package catalog

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database with the full catalog
// schema. Foreign keys are enabled and cleanup is registered with
// t.Cleanup().
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// SQLite disables foreign keys by default
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	err = CreateSchema(db)
	require.NoError(t, err)

	return db
}

// NewTestCatalog opens a full catalog (schema + seeded prompts) on a
// file-backed database in t.TempDir().
func NewTestCatalog(t testing.TB) *Catalog {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c
}
