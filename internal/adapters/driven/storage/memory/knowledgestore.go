package memory

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore is an in-memory implementation of driven.KnowledgeStore.
//
// Mutations build a fresh entries slice and publish it with one atomic
// pointer swap. Readers load the pointer once and work against that
// snapshot for the whole operation, so they never observe a half-applied
// mutation. Published snapshots are never modified afterwards.
type KnowledgeStore struct {
	// mu serialises writers. Readers never take it.
	mu   sync.Mutex
	snap atomic.Pointer[domain.StoreSnapshot]

	// initialized flips when the first base catalog lands and never
	// reverts; Reset keeps the base slice.
	initialized atomic.Bool
}

// NewKnowledgeStore creates an empty knowledge store with the given
// capacity ceiling. Non-positive capacity falls back to the default.
func NewKnowledgeStore(maxProducts int) *KnowledgeStore {
	if maxProducts <= 0 {
		maxProducts = domain.DefaultMaxProducts
	}
	s := &KnowledgeStore{}
	s.snap.Store(&domain.StoreSnapshot{MaxProducts: maxProducts})
	return s
}

// ReplaceBase wholesale-replaces the store contents with the base catalog.
// Duplicate ids keep the first occurrence; entries beyond capacity are
// dropped.
func (s *KnowledgeStore) ReplaceBase(products []domain.Product, chunks []domain.Chunk) error {
	if len(products) != len(chunks) {
		return fmt.Errorf("%w: %d products but %d chunks", domain.ErrInvalidInput, len(products), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	entries := make([]domain.StoreEntry, 0, min(len(products), old.MaxProducts))
	seen := make(map[string]struct{}, len(products))
	for i := range products {
		if len(entries) >= old.MaxProducts {
			break
		}
		if _, dup := seen[products[i].ID]; dup {
			continue
		}
		seen[products[i].ID] = struct{}{}
		entries = append(entries, domain.StoreEntry{Product: products[i], Chunk: chunks[i]})
	}

	s.snap.Store(&domain.StoreSnapshot{
		Entries:     entries,
		BaseCount:   len(entries),
		MaxProducts: old.MaxProducts,
	})
	s.initialized.Store(true)
	return nil
}

// AttachVectors attaches one vector per chunk, in store order, replacing
// any previously attached vectors and re-establishing the store's model
// and dimensionality.
func (s *KnowledgeStore) AttachVectors(vectors [][]float32, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	if !s.initialized.Load() {
		return domain.ErrNotInitialized
	}
	if len(vectors) != len(old.Entries) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrVectorCountMismatch, len(vectors), len(old.Entries))
	}

	dims := 0
	for i := range vectors {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("%w: vector %d is empty", domain.ErrDimensionMismatch, i)
		}
		if dims == 0 {
			dims = len(vectors[i])
		} else if len(vectors[i]) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", domain.ErrDimensionMismatch, i, len(vectors[i]), dims)
		}
	}

	entries := make([]domain.StoreEntry, len(old.Entries))
	copy(entries, old.Entries)
	for i := range entries {
		entries[i].Vector = vectors[i]
	}

	s.snap.Store(&domain.StoreSnapshot{
		Entries:        entries,
		BaseCount:      old.BaseCount,
		CustomCount:    old.CustomCount,
		MaxProducts:    old.MaxProducts,
		EmbeddingModel: model,
		Dimensions:     dims,
	})
	return nil
}

// FilterNew returns the subset of products that would survive an append:
// ids not already present, first occurrence wins within the input, and
// truncated to remaining capacity.
func (s *KnowledgeStore) FilterNew(products []domain.Product) ([]domain.Product, int) {
	snap := s.snap.Load()
	accepted, _, skipped := filterAgainst(snap, products)
	return accepted, skipped
}

// filterAgainst applies uniqueness and capacity filtering against one
// snapshot, returning accepted products with their input indices.
func filterAgainst(snap *domain.StoreSnapshot, products []domain.Product) (accepted []domain.Product, indices []int, skipped int) {
	seen := make(map[string]struct{}, len(snap.Entries)+len(products))
	for i := range snap.Entries {
		seen[snap.Entries[i].Product.ID] = struct{}{}
	}

	room := snap.MaxProducts - len(snap.Entries)
	for i := range products {
		if _, dup := seen[products[i].ID]; dup {
			skipped++
			continue
		}
		if len(accepted) >= room {
			skipped++
			continue
		}
		seen[products[i].ID] = struct{}{}
		accepted = append(accepted, products[i])
		indices = append(indices, i)
	}
	return accepted, indices, skipped
}

// Append adds net-new entries. Products, chunks, and vectors (when non-nil)
// are index-aligned; filtering drops the three together, so a vector never
// lands on the wrong chunk.
func (s *KnowledgeStore) Append(products []domain.Product, chunks []domain.Chunk, vectors [][]float32, model string) (*domain.AppendResult, error) {
	if len(products) != len(chunks) {
		return nil, fmt.Errorf("%w: %d products but %d chunks", domain.ErrInvalidInput, len(products), len(chunks))
	}
	if vectors != nil && len(vectors) != len(products) {
		return nil, fmt.Errorf("%w: %d vectors for %d products", domain.ErrVectorCountMismatch, len(vectors), len(products))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	if !s.initialized.Load() {
		return nil, domain.ErrNotInitialized
	}

	accepted, indices, skipped := filterAgainst(old, products)

	dims := old.Dimensions
	if vectors != nil {
		if old.EmbeddingModel != "" && model != "" && model != old.EmbeddingModel {
			return nil, fmt.Errorf("%w: store embedded with %s, append uses %s", domain.ErrDimensionMismatch, old.EmbeddingModel, model)
		}
		for _, idx := range indices {
			if dims == 0 {
				dims = len(vectors[idx])
			}
			if len(vectors[idx]) != dims || dims == 0 {
				return nil, fmt.Errorf("%w: vector has %d dimensions, want %d", domain.ErrDimensionMismatch, len(vectors[idx]), dims)
			}
		}
	}

	entries := make([]domain.StoreEntry, len(old.Entries), len(old.Entries)+len(accepted))
	copy(entries, old.Entries)
	for n, idx := range indices {
		entry := domain.StoreEntry{Product: accepted[n], Chunk: chunks[idx]}
		if vectors != nil {
			entry.Vector = vectors[idx]
		}
		entries = append(entries, entry)
	}

	next := &domain.StoreSnapshot{
		Entries:        entries,
		BaseCount:      old.BaseCount,
		CustomCount:    old.CustomCount + len(accepted),
		MaxProducts:    old.MaxProducts,
		EmbeddingModel: old.EmbeddingModel,
		Dimensions:     old.Dimensions,
	}
	if vectors != nil && next.Dimensions == 0 {
		next.Dimensions = dims
		next.EmbeddingModel = model
	}
	s.snap.Store(next)

	return &domain.AppendResult{
		Added:       len(accepted),
		Skipped:     skipped,
		Total:       len(entries),
		BaseCount:   next.BaseCount,
		CustomCount: next.CustomCount,
	}, nil
}

// Reset discards custom entries, keeping the base slice and its vectors.
func (s *KnowledgeStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	if !s.initialized.Load() {
		return domain.ErrNotInitialized
	}

	entries := make([]domain.StoreEntry, old.BaseCount)
	copy(entries, old.Entries[:old.BaseCount])

	s.snap.Store(&domain.StoreSnapshot{
		Entries:        entries,
		BaseCount:      old.BaseCount,
		MaxProducts:    old.MaxProducts,
		EmbeddingModel: old.EmbeddingModel,
		Dimensions:     old.Dimensions,
	})
	return nil
}

// Snapshot returns the current immutable store view.
func (s *KnowledgeStore) Snapshot() *domain.StoreSnapshot {
	return s.snap.Load()
}

// Status returns the counters snapshot.
func (s *KnowledgeStore) Status() domain.StoreStatus {
	snap := s.snap.Load()
	embedded := 0
	for i := range snap.Entries {
		if snap.Entries[i].Embedded() {
			embedded++
		}
	}
	return domain.StoreStatus{
		Initialized:    s.initialized.Load(),
		Products:       len(snap.Entries),
		Chunks:         len(snap.Entries),
		Embeddings:     embedded,
		BaseProducts:   snap.BaseCount,
		CustomProducts: snap.CustomCount,
		MaxProducts:    snap.MaxProducts,
		EmbeddingModel: snap.EmbeddingModel,
		Dimensions:     snap.Dimensions,
	}
}

// Products returns the held products in store order.
func (s *KnowledgeStore) Products() []domain.Product {
	snap := s.snap.Load()
	out := make([]domain.Product, len(snap.Entries))
	for i := range snap.Entries {
		out[i] = snap.Entries[i].Product
	}
	return out
}

// ChunkTexts returns the rendered chunk texts in store order.
func (s *KnowledgeStore) ChunkTexts() []string {
	snap := s.snap.Load()
	out := make([]string, len(snap.Entries))
	for i := range snap.Entries {
		out[i] = snap.Entries[i].Chunk.Text
	}
	return out
}

// HasEmbeddings reports whether any entry carries a vector.
func (s *KnowledgeStore) HasEmbeddings() bool {
	snap := s.snap.Load()
	for i := range snap.Entries {
		if snap.Entries[i].Embedded() {
			return true
		}
	}
	return false
}
