package catalog

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// RepositoryStore handles reading and writing catalog repositories.
type RepositoryStore struct {
	db *sql.DB
}

// NewRepositoryStore creates a RepositoryStore instance.
// DB must have schema already created via CreateSchema().
func NewRepositoryStore(db *sql.DB) *RepositoryStore {
	return &RepositoryStore{db: db}
}

var repositoryColumns = []string{
	"external_id", "name", "url", "description", "tech_stack",
	"namespace_path", "visibility", "is_active", "local_path",
	"created_at", "updated_at",
}

// Upsert writes or updates a repository keyed by ExternalID.
// Returns true when the repository did not exist before.
func (s *RepositoryStore) Upsert(repo *Repository) (bool, error) {
	if repo.ExternalID == "" {
		return false, fmt.Errorf("repository %q has no external ID", repo.Name)
	}

	var existing int
	err := sq.Select("COUNT(*)").
		From("repositories").
		Where(sq.Eq{"external_id": repo.ExternalID}).
		RunWith(s.db).
		QueryRow().
		Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("failed to check repository %s: %w", repo.ExternalID, err)
	}

	// INSERT OR REPLACE cascades through corpus_runs on replace, so keep
	// updates in place with an explicit UPDATE when the row exists.
	if existing > 0 {
		_, err = sq.Update("repositories").
			Set("name", repo.Name).
			Set("url", repo.URL).
			Set("description", repo.Description).
			Set("tech_stack", repo.TechStack).
			Set("namespace_path", repo.NamespacePath).
			Set("visibility", repo.Visibility).
			Set("is_active", repo.IsActive).
			Set("created_at", repo.CreatedAt.UTC().Format(time.RFC3339)).
			Set("updated_at", repo.UpdatedAt.UTC().Format(time.RFC3339)).
			Where(sq.Eq{"external_id": repo.ExternalID}).
			RunWith(s.db).
			Exec()
		if err != nil {
			return false, fmt.Errorf("failed to update repository %s: %w", repo.ExternalID, err)
		}
		return false, nil
	}

	_, err = sq.Insert("repositories").
		Columns(repositoryColumns...).
		Values(repositoryValues(repo)...).
		RunWith(s.db).
		Exec()
	if err != nil {
		return false, fmt.Errorf("failed to insert repository %s: %w", repo.ExternalID, err)
	}

	return true, nil
}

// repositoryValues binds repo to repositoryColumns in order.
func repositoryValues(repo *Repository) []any {
	return []any{
		repo.ExternalID,
		repo.Name,
		repo.URL,
		repo.Description,
		repo.TechStack,
		repo.NamespacePath,
		repo.Visibility,
		repo.IsActive,
		repo.LocalPath,
		repo.CreatedAt.UTC().Format(time.RFC3339),
		repo.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Get retrieves a repository by external ID.
// Returns (nil, nil) if not found.
func (s *RepositoryStore) Get(externalID string) (*Repository, error) {
	row := sq.Select(repositoryColumns...).
		From("repositories").
		Where(sq.Eq{"external_id": externalID}).
		RunWith(s.db).
		QueryRow()

	repo, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s: %w", externalID, err)
	}
	return repo, nil
}

// GetByName retrieves a repository by name.
// Returns (nil, nil) if not found. Names are not unique across namespaces;
// the first match by external_id order wins.
func (s *RepositoryStore) GetByName(name string) (*Repository, error) {
	row := sq.Select(repositoryColumns...).
		From("repositories").
		Where(sq.Eq{"name": name}).
		OrderBy("external_id").
		Limit(1).
		RunWith(s.db).
		QueryRow()

	repo, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository by name %s: %w", name, err)
	}
	return repo, nil
}

// List retrieves all repositories ordered by name, then external ID.
func (s *RepositoryStore) List() ([]*Repository, error) {
	rows, err := sq.Select(repositoryColumns...).
		From("repositories").
		OrderBy("name", "external_id").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query repositories: %w", err)
	}
	defer rows.Close()

	var results []*Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		results = append(results, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repositories: %w", err)
	}
	return results, nil
}

// SetLocalPath records where a repository was mirrored.
func (s *RepositoryStore) SetLocalPath(externalID, localPath string) error {
	res, err := sq.Update("repositories").
		Set("local_path", localPath).
		Where(sq.Eq{"external_id": externalID}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to set local path for %s: %w", externalID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check local path update for %s: %w", externalID, err)
	}
	if affected == 0 {
		return fmt.Errorf("repository %s not found", externalID)
	}
	return nil
}

// Count returns the number of catalog repositories.
func (s *RepositoryStore) Count() (int, error) {
	var count int
	err := sq.Select("COUNT(*)").
		From("repositories").
		RunWith(s.db).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count repositories: %w", err)
	}
	return count, nil
}

// Delete removes a repository and, via CASCADE, its runs.
func (s *RepositoryStore) Delete(externalID string) error {
	_, err := sq.Delete("repositories").
		Where(sq.Eq{"external_id": externalID}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete repository %s: %w", externalID, err)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row rowScanner) (*Repository, error) {
	repo := &Repository{}
	var createdAt, updatedAt string

	err := row.Scan(
		&repo.ExternalID,
		&repo.Name,
		&repo.URL,
		&repo.Description,
		&repo.TechStack,
		&repo.NamespacePath,
		&repo.Visibility,
		&repo.IsActive,
		&repo.LocalPath,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	repo.CreatedAt = parseStoredTime(repo.ExternalID, "created_at", createdAt)
	repo.UpdatedAt = parseStoredTime(repo.ExternalID, "updated_at", updatedAt)

	return repo, nil
}

// parseStoredTime decodes a stored RFC3339 timestamp, warning instead of
// silently zeroing when a row carries bad data. Zero times round-trip as
// valid RFC3339 and never warn.
func parseStoredTime(externalID, column, value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Printf("Warning: repository %s has invalid %s %q: %v\n", externalID, column, value, err)
		return time.Time{}
	}
	return ts
}
