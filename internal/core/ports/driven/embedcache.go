package driven

import "context"

// EmbeddingCache stores vectors keyed by (model, text), so re-embedding an
// unchanged chunk never calls the provider twice. Chunk rendering is
// byte-deterministic precisely to keep this cache effective.
//
// This is an optional service - when nil, every embedding is computed fresh.
type EmbeddingCache interface {
	// Get returns the cached vector for the text under the given model.
	Get(ctx context.Context, model, text string) ([]float32, bool, error)

	// Put stores a vector for the text under the given model.
	Put(ctx context.Context, model, text string, vector []float32) error

	// Purge removes all cached vectors for the given model.
	Purge(ctx context.Context, model string) error
}
