package driven

import (
	"context"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// CatalogSource reads the base product catalog and, optionally, a
// pre-computed embeddings file. Schema validation happens here, before
// records reach the chunker.
type CatalogSource interface {
	// LoadCatalog reads and validates the base catalog.
	LoadCatalog(ctx context.Context) (*domain.Catalog, error)

	// LoadPrecomputed reads the pre-computed embeddings file, keyed by
	// product id. Returns domain.ErrNotFound when no such file is
	// configured or present.
	LoadPrecomputed(ctx context.Context) ([]domain.PrecomputedEmbedding, error)

	// Watch invokes onChange whenever the catalog file changes on disk,
	// until the context is cancelled. Implementations that cannot watch
	// return domain.ErrNotImplemented.
	Watch(ctx context.Context, onChange func()) error
}
