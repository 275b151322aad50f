package driving

import (
	"context"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// KnowledgeService manages the lifecycle of the product knowledge store:
// loading the base catalog, embedding chunks, appending custom products
// within capacity, and resetting back to the base snapshot.
//
// Mutating operations are mutually exclusive; a second mutation arriving
// while one is in flight fails fast with domain.ErrEmbeddingInProgress.
// Read operations never block and always observe a consistent snapshot.
type KnowledgeService interface {
	// Initialize loads the base catalog and makes the store ready for
	// retrieval: when a pre-computed vectors file is configured it attaches
	// those vectors, otherwise it embeds every chunk via the embedding
	// provider. It then replays any durably stored custom products.
	Initialize(ctx context.Context) error

	// Load wholesale-replaces the store from the base catalog without
	// embedding. The store is initialized but not ready until EmbedAll or
	// StoreVectors completes.
	Load(ctx context.Context) error

	// EmbedAll embeds every chunk currently in the store, in order.
	// Fails with domain.ErrNotInitialized when nothing is loaded and
	// domain.ErrEmbeddingInProgress when a mutation is already running.
	EmbedAll(ctx context.Context) error

	// AppendPending runs the first half of the two-phase append: it
	// filters the given products for uniqueness and capacity and returns
	// the accepted subset with its chunk texts for the caller to embed.
	// The store is not modified.
	AppendPending(ctx context.Context, products []domain.Product) (*domain.PendingAppend, error)

	// Append adds net-new products. When vectors is non-nil it must align
	// 1:1 with the chunks of the accepted subset; when nil and an embedding
	// provider is configured, the service embeds the accepted chunks
	// itself. Duplicates and capacity overflow are reported in the result,
	// never as errors.
	Append(ctx context.Context, products []domain.Product, vectors [][]float32) (*domain.AppendResult, error)

	// StoreVectors attaches caller-computed vectors to every chunk in the
	// store, in order. Used by the "client embeds, server stores" flow.
	StoreVectors(ctx context.Context, vectors [][]float32) error

	// Status returns the counters snapshot.
	Status(ctx context.Context) domain.StoreStatus

	// Products returns all products in store order.
	Products(ctx context.Context) []domain.Product

	// ChunkTexts returns all rendered chunk texts in store order.
	ChunkTexts(ctx context.Context) []string

	// Reset restores the store to the last base-loaded slice, discarding
	// custom products (and their durable records).
	Reset(ctx context.Context) error

	// HasEmbeddings reports whether retrieval can serve any results.
	HasEmbeddings(ctx context.Context) bool
}
