package registry

import (
	"context"
	"fmt"

	"github.com/archinspect/repoanalyst/internal/catalog"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 100

// ImportStats summarizes one import run.
type ImportStats struct {
	Total   int
	Created int
	Updated int
}

// ImportService pulls all repositories from a Source and upserts them
// into the catalog, page by page.
type ImportService struct {
	source Source
	repos  *catalog.RepositoryStore

	// PageSize controls how many repositories are fetched per page.
	PageSize int
}

// NewImportService creates an ImportService with the default page size.
func NewImportService(source Source, repos *catalog.RepositoryStore) *ImportService {
	return &ImportService{
		source:   source,
		repos:    repos,
		PageSize: DefaultPageSize,
	}
}

// Run imports every page until the source is exhausted.
// Each repository is upserted by external ID, so reruns are idempotent.
func (s *ImportService) Run(ctx context.Context) (*ImportStats, error) {
	stats := &ImportStats{}
	pageToken := ""

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		page, nextToken, err := s.source.List(ctx, s.PageSize, pageToken)
		if err != nil {
			return stats, fmt.Errorf("failed to list repositories: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, repo := range page {
			created, err := s.repos.Upsert(repo)
			if err != nil {
				return stats, fmt.Errorf("failed to store repository %s: %w", repo.ExternalID, err)
			}
			stats.Total++
			if created {
				stats.Created++
			} else {
				stats.Updated++
			}
		}

		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	return stats, nil
}
