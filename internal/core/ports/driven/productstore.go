package driven

import (
	"context"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// CustomProductStore durably persists user-appended products so they can be
// replayed into the in-memory knowledge store after a restart. The in-memory
// store itself is not durable; this is the external record it rebuilds from.
//
// This is an optional service - when nil, custom products last only for the
// process lifetime.
type CustomProductStore interface {
	// SaveProducts stores or replaces products by id.
	SaveProducts(ctx context.Context, products []domain.Product) error

	// ListProducts returns all stored products in insertion order.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// CountProducts returns the number of stored products.
	CountProducts(ctx context.Context) (int, error)

	// DeleteProduct removes one product by id.
	DeleteProduct(ctx context.Context, id string) error

	// Clear removes all stored products.
	Clear(ctx context.Context) error
}
