// Package cached decorates an embedding service with a persistent
// (model, text) keyed cache, so unchanged chunk texts never hit the
// provider twice across runs.
package cached

import (
	"context"

	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
	"github.com/shoplens/shoplens-cli/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService wraps another embedding service with read-through
// caching. Cache failures degrade to provider calls; they never fail an
// embed.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache driven.EmbeddingCache
}

// NewEmbeddingService wraps inner with the given cache.
func NewEmbeddingService(inner driven.EmbeddingService, cache driven.EmbeddingCache) *EmbeddingService {
	return &EmbeddingService{inner: inner, cache: cache}
}

// Embed returns the cached vector for the text, or computes and caches it.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if vector, ok, err := s.cache.Get(ctx, s.inner.ModelName(), text); err == nil && ok {
		return vector, nil
	} else if err != nil {
		logger.Warn("Embedding cache read failed: %v", err)
	}

	vector, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, s.inner.ModelName(), text, vector); err != nil {
		logger.Warn("Embedding cache write failed: %v", err)
	}
	return vector, nil
}

// EmbedBatch serves cached texts locally and sends only the misses to the
// provider, preserving input order in the result.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := s.inner.ModelName()
	result := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		vector, ok, err := s.cache.Get(ctx, model, text)
		if err != nil {
			logger.Warn("Embedding cache read failed: %v", err)
		}
		if err == nil && ok {
			result[i] = vector
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		logger.Debug("Embedding cache: %d/%d hits", len(texts), len(texts))
		return result, nil
	}
	logger.Debug("Embedding cache: %d/%d hits, embedding %d", len(texts)-len(missTexts), len(texts), len(missTexts))

	computed, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for n, idx := range missIdx {
		result[idx] = computed[n]
		if err := s.cache.Put(ctx, model, missTexts[n], computed[n]); err != nil {
			logger.Warn("Embedding cache write failed: %v", err)
		}
	}
	return result, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping validates the underlying service is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the underlying service's resources.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
