// Package registry imports repository metadata from a hosting platform
// export into the catalog.
package registry

import (
	"context"

	"github.com/archinspect/repoanalyst/internal/catalog"
)

// Source lists repositories from a hosting platform, one page at a time.
// List returns the page, plus the token for the next page ("" when the
// listing is exhausted).
type Source interface {
	List(ctx context.Context, pageSize int, pageToken string) ([]*catalog.Repository, string, error)
}
