package domain

// StoreEntry is one position in the knowledge store: a product, its derived
// chunk, and the chunk's embedding vector once one has been attached.
// Folding the three into one record makes "has no vector yet" a per-entry
// state instead of an array-length discrepancy between parallel slices.
type StoreEntry struct {
	// Product is the catalog entity.
	Product Product

	// Chunk is the embeddable projection of Product.
	Chunk Chunk

	// Vector is the chunk's embedding. Nil until embedded; entries without
	// a vector are visible in listings but invisible to retrieval.
	Vector []float32
}

// Embedded reports whether the entry has a vector attached.
func (e *StoreEntry) Embedded() bool {
	return len(e.Vector) > 0
}

// StoreSnapshot is an immutable view of the knowledge store, published
// atomically by mutations. Readers see either the previous snapshot or the
// next one, never a mix.
type StoreSnapshot struct {
	// Entries holds the store contents in insertion order: base catalog
	// entries first, then appended custom entries.
	Entries []StoreEntry

	// BaseCount is the number of entries loaded from the base catalog.
	BaseCount int

	// CustomCount is the number of user-appended entries.
	CustomCount int

	// MaxProducts is the capacity ceiling.
	MaxProducts int

	// EmbeddingModel names the model the attached vectors came from.
	// Empty until the first vectors are attached.
	EmbeddingModel string

	// Dimensions is the vector dimensionality established for the store.
	// Zero until the first vectors are attached.
	Dimensions int
}

// EmbeddedEntries returns the entries that carry a vector, in store order.
func (s *StoreSnapshot) EmbeddedEntries() []StoreEntry {
	out := make([]StoreEntry, 0, len(s.Entries))
	for i := range s.Entries {
		if s.Entries[i].Embedded() {
			out = append(out, s.Entries[i])
		}
	}
	return out
}

// StoreStatus is the counters snapshot reported to callers. All fields are
// read from one consistent snapshot.
type StoreStatus struct {
	// Initialized is true once a base catalog has been loaded.
	Initialized bool `json:"initialized"`

	// Embedding is true while an embed or other mutation is in flight.
	Embedding bool `json:"embedding"`

	// Products is the total number of products held.
	Products int `json:"productsCount"`

	// Chunks is the number of derived chunks. Always equals Products.
	Chunks int `json:"chunksCount"`

	// Embeddings is the number of chunks with vectors attached.
	Embeddings int `json:"embeddingsCount"`

	// BaseProducts is the base catalog share of Products.
	BaseProducts int `json:"baseProductsCount"`

	// CustomProducts is the user-appended share of Products.
	CustomProducts int `json:"customProductsCount"`

	// MaxProducts is the capacity ceiling.
	MaxProducts int `json:"maxProducts"`

	// EmbeddingModel names the model vectors came from, if any.
	EmbeddingModel string `json:"embeddingModel,omitempty"`

	// Dimensions is the vector dimensionality, if established.
	Dimensions int `json:"dimensions,omitempty"`
}

// Ready reports whether the store can serve retrieval: every chunk embedded.
func (s StoreStatus) Ready() bool {
	return s.Initialized && s.Chunks > 0 && s.Embeddings == s.Chunks
}

// AppendResult reports the outcome of an append. Duplicate ids and
// capacity overflow are not errors; they surface here as Skipped, and
// callers must check it even on success.
type AppendResult struct {
	// Added is the number of products accepted.
	Added int `json:"added"`

	// Skipped counts duplicates plus capacity-overflow rejects.
	Skipped int `json:"skipped"`

	// Total is the product count after the append.
	Total int `json:"total"`

	// BaseCount is the base catalog share after the append.
	BaseCount int `json:"baseCount"`

	// CustomCount is the custom share after the append.
	CustomCount int `json:"customCount"`
}

// PendingAppend is the first half of the two-phase append protocol: the
// accepted products and their chunk texts, returned for the caller to embed
// and resubmit together with vectors.
type PendingAppend struct {
	// Accepted are the products that passed uniqueness and capacity checks,
	// in input order.
	Accepted []Product `json:"accepted"`

	// ChunkTexts are the rendered chunk texts for Accepted, index-aligned.
	ChunkTexts []string `json:"chunkTexts"`

	// Skipped counts duplicates plus capacity-overflow rejects.
	Skipped int `json:"skipped"`
}
