package driven

import (
	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// KnowledgeStore holds the in-process catalog knowledge: one ordered entry
// per product, each carrying the product, its chunk, and (once embedded) its
// vector.
//
// The store enforces the identity and capacity invariants: product ids are
// unique, the entry count never exceeds the capacity ceiling, and every
// attached vector matches the store's established dimensionality.
//
// Implementations must publish mutations atomically so that concurrent
// readers observe either the previous state or the next one, never a torn
// mix. Mutual exclusion BETWEEN mutations (including the embedding calls
// that precede a swap) is the KnowledgeService's responsibility, not the
// store's.
//
// The store is rebuildable from the catalog source; it offers no durability
// across process restarts.
type KnowledgeStore interface {
	// ReplaceBase wholesale-replaces the store contents with the base
	// catalog entries, discarding any previously attached vectors and any
	// custom entries. Idempotent for identical input.
	ReplaceBase(products []domain.Product, chunks []domain.Chunk) error

	// AttachVectors attaches one vector per existing chunk, in store order.
	// The vector count must equal the chunk count exactly
	// (domain.ErrVectorCountMismatch otherwise), and all vectors must share
	// one dimensionality (domain.ErrDimensionMismatch otherwise).
	// The model name tags the store for mixed-model rejection.
	AttachVectors(vectors [][]float32, model string) error

	// FilterNew returns the subset of products whose ids are not already
	// present, in input order, truncated to the remaining capacity.
	// Skipped counts duplicates plus capacity-overflow rejects. The store
	// is not modified.
	FilterNew(products []domain.Product) (accepted []domain.Product, skipped int)

	// Append adds net-new entries after re-applying uniqueness and capacity
	// filtering. When vectors is non-nil its length must equal the accepted
	// count (domain.ErrVectorCountMismatch otherwise) and dimensions must
	// match the store (domain.ErrDimensionMismatch). When vectors is nil
	// the entries are stored unembedded: visible in listings, invisible to
	// retrieval. Duplicates and overflow are reported via Skipped, never as
	// errors.
	Append(products []domain.Product, chunks []domain.Chunk, vectors [][]float32, model string) (*domain.AppendResult, error)

	// Reset discards custom entries, restoring the store to exactly the
	// last base-loaded slice.
	Reset() error

	// Snapshot returns the current immutable store view.
	Snapshot() *domain.StoreSnapshot

	// Status returns the counters snapshot. All counters are read from one
	// consistent snapshot.
	Status() domain.StoreStatus

	// Products returns the held products in store order.
	Products() []domain.Product

	// ChunkTexts returns the rendered chunk texts in store order.
	ChunkTexts() []string

	// HasEmbeddings reports whether any entry carries a vector. This is the
	// primary readiness gate for retrieval callers.
	HasEmbeddings() bool
}
