package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driving"
	"github.com/shoplens/shoplens-cli/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// KnowledgeService manages the knowledge store lifecycle.
//
// Every mutating operation runs under a single mutation guard held for the
// operation's full duration, including any embedding calls: a second
// mutation arriving mid-flight fails fast with ErrEmbeddingInProgress
// instead of interleaving. Each mutation validates and embeds against an
// immutable snapshot, then the store publishes the result as one atomic
// swap, so readers never observe a torn state.
type KnowledgeService struct {
	store    driven.KnowledgeStore
	catalog  driven.CatalogSource
	embedder driven.EmbeddingService  // optional
	custom   driven.CustomProductStore // optional

	// mutating serialises mutations. TryLock failure maps to
	// ErrEmbeddingInProgress; mutations are never queued.
	mutating sync.Mutex

	// embedding mirrors the guard for lock-free Status reads. It stays set
	// until the in-flight provider call actually resolves; there is no
	// self-healing on caller-side timeouts.
	embedding atomic.Bool
}

// NewKnowledgeService creates a new knowledge service.
// The embedder and custom stores are optional (can be nil): without an
// embedder only the pre-computed and caller-supplied vector flows work,
// and without a custom store appended products last only for the process
// lifetime.
func NewKnowledgeService(
	store driven.KnowledgeStore,
	catalog driven.CatalogSource,
	embedder driven.EmbeddingService,
	custom driven.CustomProductStore,
) *KnowledgeService {
	return &KnowledgeService{
		store:    store,
		catalog:  catalog,
		embedder: embedder,
		custom:   custom,
	}
}

// lock acquires the mutation guard without blocking.
func (s *KnowledgeService) lock() error {
	if !s.mutating.TryLock() {
		return domain.ErrEmbeddingInProgress
	}
	s.embedding.Store(true)
	return nil
}

// unlock releases the mutation guard.
func (s *KnowledgeService) unlock() {
	s.embedding.Store(false)
	s.mutating.Unlock()
}

// Initialize loads the base catalog and makes the store ready for
// retrieval, preferring the pre-computed vectors fast path when available,
// then replays durably stored custom products.
func (s *KnowledgeService) Initialize(ctx context.Context) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()

	logger.Section("Knowledge Base Initialization")

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	precomputed, err := s.catalog.LoadPrecomputed(ctx)
	switch {
	case err == nil:
		if err := s.attachPrecomputedLocked(precomputed); err != nil {
			return err
		}
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("No pre-computed vectors, embedding %d chunks", s.store.Status().Chunks)
		if err := s.embedAllLocked(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("load pre-computed vectors: %w", err)
	}

	return s.replayCustomLocked(ctx)
}

// Load wholesale-replaces the store from the base catalog without
// embedding.
func (s *KnowledgeService) Load(ctx context.Context) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()
	return s.loadLocked(ctx)
}

func (s *KnowledgeService) loadLocked(ctx context.Context) error {
	kb, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	chunks := ProductsToChunks(kb.Products)
	if err := s.store.ReplaceBase(kb.Products, chunks); err != nil {
		return fmt.Errorf("replace base catalog: %w", err)
	}

	logger.Info("Loaded catalog %q: %d products", kb.Name, len(kb.Products))
	return nil
}

// EmbedAll embeds every chunk currently in the store, in order.
func (s *KnowledgeService) EmbedAll(ctx context.Context) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()
	return s.embedAllLocked(ctx)
}

func (s *KnowledgeService) embedAllLocked(ctx context.Context) error {
	texts := s.store.ChunkTexts()
	if len(texts) == 0 {
		return domain.ErrNotInitialized
	}
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Embedding %d chunks with %s", len(texts), s.embedder.ModelName())
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.store.AttachVectors(vectors, s.embedder.ModelName()); err != nil {
		return err
	}
	logger.Info("Knowledge base ready: %d embeddings", len(vectors))
	return nil
}

// attachPrecomputedLocked matches pre-computed vectors to chunks by product
// id and attaches them in store order. Every chunk must be covered.
func (s *KnowledgeService) attachPrecomputedLocked(records []domain.PrecomputedEmbedding) error {
	byProduct := make(map[string][]float32, len(records))
	model := ""
	for i := range records {
		byProduct[records[i].ProductID] = records[i].Vector
	}
	if s.embedder != nil {
		model = s.embedder.ModelName()
	}

	snap := s.store.Snapshot()
	vectors := make([][]float32, len(snap.Entries))
	for i := range snap.Entries {
		v, ok := byProduct[snap.Entries[i].Product.ID]
		if !ok {
			return fmt.Errorf("%w: no pre-computed vector for product %s",
				domain.ErrVectorCountMismatch, snap.Entries[i].Product.ID)
		}
		vectors[i] = v
	}

	if err := s.store.AttachVectors(vectors, model); err != nil {
		return err
	}
	logger.Info("Attached %d pre-computed vectors", len(vectors))
	return nil
}

// replayCustomLocked re-appends durably stored custom products after a base
// load. Products that no longer fit (capacity, duplicate ids) are skipped
// exactly like a live append.
func (s *KnowledgeService) replayCustomLocked(ctx context.Context) error {
	if s.custom == nil {
		return nil
	}
	products, err := s.custom.ListProducts(ctx)
	if err != nil {
		logger.Warn("Custom product replay failed: %v", err)
		return nil
	}
	if len(products) == 0 {
		return nil
	}

	result, err := s.appendLocked(ctx, products, nil)
	if err != nil {
		logger.Warn("Custom product replay failed: %v", err)
		return nil
	}
	logger.Info("Replayed custom products: %d added, %d skipped", result.Added, result.Skipped)
	return nil
}

// AppendPending runs the filtering half of the two-phase append and returns
// chunk texts for the caller to embed. The store is not modified.
func (s *KnowledgeService) AppendPending(_ context.Context, products []domain.Product) (*domain.PendingAppend, error) {
	if !s.store.Status().Initialized {
		return nil, domain.ErrNotInitialized
	}
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return nil, err
		}
	}

	accepted, skipped := s.store.FilterNew(products)
	texts := make([]string, len(accepted))
	for i := range accepted {
		texts[i] = ProductToChunk(accepted[i]).Text
	}
	return &domain.PendingAppend{
		Accepted:   accepted,
		ChunkTexts: texts,
		Skipped:    skipped,
	}, nil
}

// Append adds net-new products, embedding them when no vectors are
// supplied. Duplicates and capacity overflow surface as Skipped counts.
func (s *KnowledgeService) Append(ctx context.Context, products []domain.Product, vectors [][]float32) (*domain.AppendResult, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.unlock()

	if !s.store.Status().Initialized {
		return nil, domain.ErrNotInitialized
	}
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return nil, err
		}
	}
	return s.appendLocked(ctx, products, vectors)
}

func (s *KnowledgeService) appendLocked(ctx context.Context, products []domain.Product, vectors [][]float32) (*domain.AppendResult, error) {
	accepted, skipped := s.store.FilterNew(products)
	chunks := ProductsToChunks(accepted)

	model := ""
	if s.embedder != nil {
		model = s.embedder.ModelName()
	}

	if vectors != nil {
		if len(vectors) != len(accepted) {
			return nil, domain.ErrVectorCountMismatch
		}
	} else if s.embedder != nil && len(accepted) > 0 {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Text
		}
		embedded, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed appended chunks: %w", err)
		}
		vectors = embedded
	}

	result, err := s.store.Append(accepted, chunks, vectors, model)
	if err != nil {
		return nil, err
	}
	result.Skipped += skipped

	if s.custom != nil && len(accepted) > 0 {
		if err := s.custom.SaveProducts(ctx, accepted); err != nil {
			logger.Warn("Persisting custom products failed: %v", err)
		}
	}

	logger.Debug("Append: %d added, %d skipped, %d total", result.Added, result.Skipped, result.Total)
	return result, nil
}

// StoreVectors attaches caller-computed vectors to every chunk in order.
func (s *KnowledgeService) StoreVectors(_ context.Context, vectors [][]float32) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()

	if !s.store.Status().Initialized {
		return domain.ErrNotInitialized
	}

	model := ""
	if s.embedder != nil {
		model = s.embedder.ModelName()
	}
	return s.store.AttachVectors(vectors, model)
}

// Status returns the counters snapshot. The embedding flag reflects any
// in-flight mutation.
func (s *KnowledgeService) Status(_ context.Context) domain.StoreStatus {
	status := s.store.Status()
	status.Embedding = s.embedding.Load()
	return status
}

// Products returns all products in store order.
func (s *KnowledgeService) Products(_ context.Context) []domain.Product {
	return s.store.Products()
}

// ChunkTexts returns all rendered chunk texts in store order.
func (s *KnowledgeService) ChunkTexts(_ context.Context) []string {
	return s.store.ChunkTexts()
}

// Reset restores the store to the last base-loaded slice and clears the
// durable custom product records.
func (s *KnowledgeService) Reset(ctx context.Context) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()

	if err := s.store.Reset(); err != nil {
		return err
	}
	if s.custom != nil {
		if err := s.custom.Clear(ctx); err != nil {
			logger.Warn("Clearing custom product records failed: %v", err)
		}
	}
	return nil
}

// HasEmbeddings reports whether retrieval can serve any results.
func (s *KnowledgeService) HasEmbeddings(_ context.Context) bool {
	return s.store.HasEmbeddings()
}

// WatchCatalog re-initializes the store whenever the base catalog file
// changes on disk. It blocks until the context is cancelled and is meant to
// run in its own goroutine from the composition root.
func (s *KnowledgeService) WatchCatalog(ctx context.Context) error {
	return s.catalog.Watch(ctx, func() {
		logger.Info("Catalog changed on disk, reloading")
		if err := s.Initialize(ctx); err != nil {
			logger.Warn("Catalog reload failed: %v", err)
		}
	})
}
