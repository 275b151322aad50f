package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Vectors are L2-normalized at a fixed dimensionality chosen by the deployed
// model; the knowledge store rejects vectors whose dimensionality differs
// from what it has already stored.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Google (text-embedding-004)
//   - Ollama (nomic-embed-text, all-minilm)
//
// Failures are reported as *domain.ProviderError with a machine-readable
// category; the core never retries internally.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently,
	// preserving input order. More efficient than calling Embed in a loop.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup to verify connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
