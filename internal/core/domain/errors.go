package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNotInitialized indicates an operation requiring a loaded catalog
	// was called before any catalog was loaded. Recoverable by loading.
	ErrNotInitialized = errors.New("knowledge base not initialized")

	// ErrEmbeddingInProgress indicates a mutating store operation was
	// attempted while another mutation is running. The caller must retry;
	// mutations are never queued.
	ErrEmbeddingInProgress = errors.New("embedding already in progress")

	// ErrVectorCountMismatch indicates caller-supplied vectors do not align
	// 1:1 with the chunks they are meant to cover. This is a caller bug and
	// is not recoverable without regenerating the vectors.
	ErrVectorCountMismatch = errors.New("vector count does not match chunk count")

	// ErrDimensionMismatch indicates a vector's dimensionality differs from
	// the dimensionality already established for the store. Mixing embedding
	// models without a full re-embed is rejected.
	ErrDimensionMismatch = errors.New("vector dimensions do not match store")

	// ErrEmbeddingUnavailable indicates the embedding provider is not
	// configured. Retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation provider is not
	// configured. Questions cannot be answered without it.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)
