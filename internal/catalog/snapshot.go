package catalog

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Snapshot is a full in-memory export of the catalog tables.
type Snapshot struct {
	Repositories []*Repository
	Prompts      []*Prompt
	CorpusRuns   []*CorpusRun
	AnalysisRuns []*AnalysisRun
}

// ExportSnapshot reads every table into memory.
func (c *Catalog) ExportSnapshot() (*Snapshot, error) {
	repos, err := c.Repositories.List()
	if err != nil {
		return nil, err
	}
	prompts, err := c.Prompts.List()
	if err != nil {
		return nil, err
	}
	corpusRuns, err := c.Runs.ListAllCorpusRuns()
	if err != nil {
		return nil, err
	}
	analysisRuns, err := c.Runs.ListAllAnalysisRuns()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Repositories: repos,
		Prompts:      prompts,
		CorpusRuns:   corpusRuns,
		AnalysisRuns: analysisRuns,
	}, nil
}

// ImportSnapshot loads snap in a single transaction, so a failed import
// leaves the catalog untouched. With clearExisting the tables are
// emptied first, children before parents. Rows matching an existing key
// are overwritten in place, never deleted and re-inserted, so importing
// a repository cannot cascade away runs the snapshot does not mention.
func (c *Catalog) ImportSnapshot(snap *Snapshot, clearExisting bool) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if clearExisting {
		for _, table := range []string{"analysis_runs", "corpus_runs", "prompts", "repositories"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	for _, repo := range snap.Repositories {
		_, err := sq.Insert("repositories").
			Columns(repositoryColumns...).
			Values(repositoryValues(repo)...).
			Suffix(upsertSuffix("external_id", repositoryColumns)).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to import repository %s: %w", repo.ExternalID, err)
		}
	}

	for _, p := range snap.Prompts {
		_, err := sq.Insert("prompts").
			Columns(promptColumns...).
			Values(promptValues(p, p.UpdatedAt)...).
			Suffix(upsertSuffix("title", promptColumns)).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to import prompt %s: %w", p.Title, err)
		}
	}

	for _, run := range snap.CorpusRuns {
		_, err := sq.Insert("corpus_runs").
			Columns(corpusRunColumns...).
			Values(corpusRunValues(run)...).
			Suffix(upsertSuffix("id", corpusRunColumns)).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to import corpus run %s: %w", run.ID, err)
		}
	}

	for _, run := range snap.AnalysisRuns {
		_, err := sq.Insert("analysis_runs").
			Columns(analysisRunColumns...).
			Values(analysisRunValues(run)...).
			Suffix(upsertSuffix("id", analysisRunColumns)).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to import analysis run %s: %w", run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// upsertSuffix builds an ON CONFLICT clause overwriting every column
// except the key.
func upsertSuffix(key string, columns []string) string {
	assignments := make([]string, 0, len(columns)-1)
	for _, col := range columns {
		if col == key {
			continue
		}
		assignments = append(assignments, col+"=excluded."+col)
	}
	return "ON CONFLICT(" + key + ") DO UPDATE SET " + strings.Join(assignments, ", ")
}
