package catalog

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// RunStore handles reading and writing corpus and analysis runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore instance.
// DB must have schema already created via CreateSchema().
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

var corpusRunColumns = []string{
	"id", "repo_external_id", "artifact_path", "file_count",
	"files_discovered", "size_bytes", "sha256", "complete", "created_at",
}

var analysisRunColumns = []string{
	"id", "repo_external_id", "corpus_run_id", "prompt_title",
	"prompt_category", "prompt_snapshot", "provider", "model",
	"score_pct", "summary", "suggestions_json", "endpoints_json",
	"created_at",
}

// InsertCorpusRun writes a single corpus run row.
func (s *RunStore) InsertCorpusRun(run *CorpusRun) error {
	if run.ID == "" {
		return fmt.Errorf("corpus run has no ID")
	}

	_, err := sq.Insert("corpus_runs").
		Columns(corpusRunColumns...).
		Values(corpusRunValues(run)...).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert corpus run %s: %w", run.ID, err)
	}
	return nil
}

// corpusRunValues binds run to corpusRunColumns in order.
func corpusRunValues(run *CorpusRun) []any {
	return []any{
		run.ID,
		run.RepoExternalID,
		run.ArtifactPath,
		run.FileCount,
		run.FilesDiscovered,
		run.SizeBytes,
		run.SHA256,
		run.Complete,
		run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// LatestCorpusRun retrieves the most recent corpus run for a repository.
// Returns (nil, nil) if the repository has no runs yet.
func (s *RunStore) LatestCorpusRun(repoExternalID string) (*CorpusRun, error) {
	// created_at has second resolution; rowid breaks ties by insert order.
	row := sq.Select(corpusRunColumns...).
		From("corpus_runs").
		Where(sq.Eq{"repo_external_id": repoExternalID}).
		OrderBy("created_at DESC", "rowid DESC").
		Limit(1).
		RunWith(s.db).
		QueryRow()

	run, err := scanCorpusRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest corpus run for %s: %w", repoExternalID, err)
	}
	return run, nil
}

// ListCorpusRuns retrieves all corpus runs for a repository, newest first.
func (s *RunStore) ListCorpusRuns(repoExternalID string) ([]*CorpusRun, error) {
	rows, err := sq.Select(corpusRunColumns...).
		From("corpus_runs").
		Where(sq.Eq{"repo_external_id": repoExternalID}).
		OrderBy("created_at DESC", "rowid DESC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus runs for %s: %w", repoExternalID, err)
	}
	defer rows.Close()

	var results []*CorpusRun
	for rows.Next() {
		run, err := scanCorpusRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan corpus run: %w", err)
		}
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corpus runs: %w", err)
	}
	return results, nil
}

// ListAllCorpusRuns retrieves every corpus run across all repositories
// in insert order. Used by backup export.
func (s *RunStore) ListAllCorpusRuns() ([]*CorpusRun, error) {
	rows, err := sq.Select(corpusRunColumns...).
		From("corpus_runs").
		OrderBy("rowid ASC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus runs: %w", err)
	}
	defer rows.Close()

	var results []*CorpusRun
	for rows.Next() {
		run, err := scanCorpusRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan corpus run: %w", err)
		}
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corpus runs: %w", err)
	}
	return results, nil
}

// InsertAnalysisRun writes a single analysis run row.
func (s *RunStore) InsertAnalysisRun(run *AnalysisRun) error {
	if run.ID == "" {
		return fmt.Errorf("analysis run has no ID")
	}

	_, err := sq.Insert("analysis_runs").
		Columns(analysisRunColumns...).
		Values(analysisRunValues(run)...).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert analysis run %s: %w", run.ID, err)
	}
	return nil
}

// analysisRunValues binds run to analysisRunColumns in order.
func analysisRunValues(run *AnalysisRun) []any {
	return []any{
		run.ID,
		run.RepoExternalID,
		run.CorpusRunID,
		run.PromptTitle,
		run.PromptCategory,
		run.PromptSnapshot,
		run.Provider,
		run.Model,
		run.ScorePct,
		run.Summary,
		run.SuggestionsJSON,
		run.EndpointsJSON,
		run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListAnalysisRuns retrieves all analysis runs for a repository, newest first.
func (s *RunStore) ListAnalysisRuns(repoExternalID string) ([]*AnalysisRun, error) {
	rows, err := sq.Select(analysisRunColumns...).
		From("analysis_runs").
		Where(sq.Eq{"repo_external_id": repoExternalID}).
		OrderBy("created_at DESC", "rowid DESC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs for %s: %w", repoExternalID, err)
	}
	defer rows.Close()

	var results []*AnalysisRun
	for rows.Next() {
		run, err := scanAnalysisRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// ListAllAnalysisRuns retrieves every analysis run across all repositories
// in insert order. Used by backup export.
func (s *RunStore) ListAllAnalysisRuns() ([]*AnalysisRun, error) {
	rows, err := sq.Select(analysisRunColumns...).
		From("analysis_runs").
		OrderBy("rowid ASC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	var results []*AnalysisRun
	for rows.Next() {
		run, err := scanAnalysisRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

func scanCorpusRun(row rowScanner) (*CorpusRun, error) {
	run := &CorpusRun{}
	var createdAt string

	err := row.Scan(
		&run.ID,
		&run.RepoExternalID,
		&run.ArtifactPath,
		&run.FileCount,
		&run.FilesDiscovered,
		&run.SizeBytes,
		&run.SHA256,
		&run.Complete,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return run, nil
}

func scanAnalysisRun(row rowScanner) (*AnalysisRun, error) {
	run := &AnalysisRun{}
	var createdAt string

	err := row.Scan(
		&run.ID,
		&run.RepoExternalID,
		&run.CorpusRunID,
		&run.PromptTitle,
		&run.PromptCategory,
		&run.PromptSnapshot,
		&run.Provider,
		&run.Model,
		&run.ScorePct,
		&run.Summary,
		&run.SuggestionsJSON,
		&run.EndpointsJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return run, nil
}
