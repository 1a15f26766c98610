package catalog

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to catalog_metadata when the schema is created.
const SchemaVersion = "1.0"

// CreateSchema creates all catalog tables and indexes.
// Uses a transaction for atomicity - all schema creation succeeds or fails
// together. Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Enable foreign keys (must be set for each connection)
	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"repositories", createRepositoriesTable},
		{"corpus_runs", createCorpusRunsTable},
		{"prompts", createPromptsTable},
		{"analysis_runs", createAnalysisRunsTable},
		{"catalog_metadata", createCatalogMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	// Create all indexes
	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	// Bootstrap catalog_metadata in the same transaction
	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT INTO catalog_metadata (key, value, updated_at) VALUES
			('schema_version', ?, ?),
			('created_at', ?, ?)
	`
	if _, err := tx.Exec(bootstrapSQL, SchemaVersion, now, now, now); err != nil {
		return fmt.Errorf("failed to bootstrap catalog_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from catalog_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='catalog_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check catalog_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil // New database
	}

	var version string
	query := "SELECT value FROM catalog_metadata WHERE key = 'schema_version'"
	err = db.QueryRow(query).Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in catalog_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// UpdateSchemaVersion sets or updates the schema version in catalog_metadata.
func UpdateSchemaVersion(db *sql.DB, version string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO catalog_metadata (key, value, updated_at)
		VALUES ('schema_version', ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	_, err := db.Exec(query, version, now)
	if err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

// Table DDL constants

const createRepositoriesTable = `
CREATE TABLE repositories (
    external_id TEXT PRIMARY KEY,                -- Natural key: stable platform ID
    name TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    tech_stack TEXT NOT NULL DEFAULT '',
    namespace_path TEXT NOT NULL DEFAULT '',
    visibility TEXT NOT NULL DEFAULT 'internal', -- public, internal, private
    is_active INTEGER NOT NULL DEFAULT 1,        -- Boolean: archived repos are 0
    local_path TEXT NOT NULL DEFAULT '',         -- Mirror location, '' until mirrored
    created_at TEXT NOT NULL,                    -- ISO 8601 from the platform export
    updated_at TEXT NOT NULL                     -- ISO 8601 from the platform export
)
`

const createCorpusRunsTable = `
CREATE TABLE corpus_runs (
    id TEXT PRIMARY KEY,                         -- UUID
    repo_external_id TEXT NOT NULL,
    artifact_path TEXT NOT NULL,
    file_count INTEGER NOT NULL DEFAULT 0,       -- Files embedded in the document
    files_discovered INTEGER NOT NULL DEFAULT 0, -- Eligible files before packing
    size_bytes INTEGER NOT NULL DEFAULT 0,       -- Embedded content bytes
    sha256 TEXT NOT NULL,                        -- Hex digest of the full document
    complete INTEGER NOT NULL DEFAULT 1,         -- Boolean: 0 when the limit cut files
    created_at TEXT NOT NULL,                    -- ISO 8601
    FOREIGN KEY (repo_external_id) REFERENCES repositories(external_id) ON DELETE CASCADE
)
`

const createPromptsTable = `
CREATE TABLE prompts (
    title TEXT PRIMARY KEY,
    short_description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT 'other',      -- techstack, fachlichkeit, hexagonal, rest_l2, security, performance, other
    prompt_text TEXT NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,        -- Boolean
    updated_at TEXT NOT NULL                     -- ISO 8601
)
`

const createAnalysisRunsTable = `
CREATE TABLE analysis_runs (
    id TEXT PRIMARY KEY,                         -- UUID
    repo_external_id TEXT NOT NULL,
    corpus_run_id TEXT NOT NULL,
    prompt_title TEXT NOT NULL,
    prompt_category TEXT NOT NULL,
    prompt_snapshot TEXT NOT NULL,               -- Prompt text at execution time
    provider TEXT NOT NULL,                      -- mock, gemini
    model TEXT NOT NULL DEFAULT '',
    score_pct INTEGER NOT NULL DEFAULT 0,        -- 0-100
    summary TEXT NOT NULL DEFAULT '',
    suggestions_json TEXT NOT NULL DEFAULT '[]',
    endpoints_json TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,                    -- ISO 8601
    FOREIGN KEY (repo_external_id) REFERENCES repositories(external_id) ON DELETE CASCADE,
    FOREIGN KEY (corpus_run_id) REFERENCES corpus_runs(id) ON DELETE CASCADE
)
`

const createCatalogMetadataTable = `
CREATE TABLE catalog_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		// repositories table indexes
		"CREATE INDEX idx_repositories_name ON repositories(name)",
		"CREATE INDEX idx_repositories_is_active ON repositories(is_active)",
		"CREATE INDEX idx_repositories_namespace ON repositories(namespace_path)",

		// corpus_runs table indexes
		"CREATE INDEX idx_corpus_runs_repo ON corpus_runs(repo_external_id)",
		"CREATE INDEX idx_corpus_runs_created_at ON corpus_runs(created_at)",

		// prompts table indexes
		"CREATE INDEX idx_prompts_category ON prompts(category)",
		"CREATE INDEX idx_prompts_is_active ON prompts(is_active)",

		// analysis_runs table indexes
		"CREATE INDEX idx_analysis_runs_repo ON analysis_runs(repo_external_id)",
		"CREATE INDEX idx_analysis_runs_corpus_run ON analysis_runs(corpus_run_id)",
		"CREATE INDEX idx_analysis_runs_category ON analysis_runs(prompt_category)",
	}
}
