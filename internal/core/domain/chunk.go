package domain

// Chunk is the single retrievable text unit derived from one Product.
// Catalog products are short enough that the whole record is one chunk;
// there is no sub-document splitting.
type Chunk struct {
	// ID is the synthetic chunk identifier, "chunk-<productID>".
	ID string `json:"id"`

	// ProductID is the owning product.
	ProductID string `json:"productId"`

	// Text is the rendered text block the embedding is computed from.
	// Rendering is deterministic: chunking an unchanged product twice
	// yields byte-identical text.
	Text string `json:"text"`

	// Metadata duplicates the product fields needed for result display and
	// filtering, so query-time code never re-joins against the product list.
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata is the display/filter subset of a Product carried on every
// chunk.
type ChunkMetadata struct {
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	Category      string  `json:"category"`
	Brand         string  `json:"brand"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice"`
	Discount      string  `json:"discount,omitempty"`
	Rating        float64 `json:"rating"`
	SoldCount     int     `json:"soldCount"`
	IsMall        bool    `json:"isMall"`
	FreeShipping  bool    `json:"freeShipping"`
}

// PrecomputedEmbedding is one record of a pre-computed vectors file,
// consumed by the fast-path load instead of calling the embedding provider.
type PrecomputedEmbedding struct {
	// ProductID keys the record to a catalog product.
	ProductID string `json:"productId"`

	// Text is the chunk text the vector was computed from.
	Text string `json:"text"`

	// Vector is the embedding.
	Vector []float32 `json:"vector"`
}
