package cli

import (
	"fmt"

	"github.com/archinspect/repoanalyst/internal/catalog"
	"github.com/archinspect/repoanalyst/internal/config"
)

// openCatalog opens the catalog database configured for this run.
// Callers must Close it.
func openCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, nil
}

// requireRepository loads one repository by external ID with a friendly
// error when it is not in the catalog yet. Get returns (nil, nil) for an
// unknown ID, so both shapes must be checked.
func requireRepository(cat *catalog.Catalog, externalID string) (*catalog.Repository, error) {
	repo, err := cat.Repositories.Get(externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up repository %q: %w", externalID, err)
	}
	if repo == nil {
		return nil, fmt.Errorf("repository %q not found (run 'repoanalyst import' first)", externalID)
	}
	return repo, nil
}
