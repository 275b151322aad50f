package domain

// Default query tunables.
const (
	// DefaultTopK is the maximum number of ranked results per query.
	DefaultTopK = 5

	// DefaultSimilarityThreshold is the minimum cosine similarity for a
	// candidate to count as a match.
	DefaultSimilarityThreshold = 0.3

	// DefaultTemperature is the generation temperature.
	DefaultTemperature = 0.7

	// DefaultMaxContextLength caps the rendered context passed to the
	// generation provider, in characters.
	DefaultMaxContextLength = 4000
)

// Fixed answers for the two non-error terminal states of the pipeline.
// These are normal, user-visible results, not failures.
const (
	// MsgKnowledgeBaseNotReady is returned when the store holds no
	// embedded chunks.
	MsgKnowledgeBaseNotReady = "The knowledge base is not ready yet. Please load the product catalog first."

	// MsgNoMatch is returned when no candidate clears the similarity
	// threshold.
	MsgNoMatch = "No relevant products were found for your question. Please try rephrasing it."
)

// SuggestedQuestions are starter questions surfaced by the chat surfaces.
var SuggestedQuestions = []string{
	"Which noise-cancelling bluetooth headphones do you recommend?",
	"What is the difference between the iPhone 16 Pro Max and the Samsung S25 Ultra?",
	"Recommend a gaming laptop under 30,000",
	"Which product has the biggest discount?",
	"What is the best-selling product?",
	"Recommend beauty products under 1,000",
}

// QueryOptions configures a single assistant query.
type QueryOptions struct {
	// TopK is the maximum number of ranked results. Zero means DefaultTopK.
	TopK int `json:"topK,omitempty"`

	// SimilarityThreshold is the minimum similarity. Zero means
	// DefaultSimilarityThreshold.
	SimilarityThreshold float64 `json:"similarityThreshold,omitempty"`

	// Temperature is the generation temperature. Zero means
	// DefaultTemperature.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxContextLength caps the rendered context in characters. Zero means
	// DefaultMaxContextLength.
	MaxContextLength int `json:"maxContextLength,omitempty"`

	// Filters optionally narrows the candidate set before scoring.
	Filters *RetrievalFilters `json:"filters,omitempty"`
}

// Normalized returns a copy with zero fields replaced by defaults.
func (o QueryOptions) Normalized() QueryOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxContextLength <= 0 {
		o.MaxContextLength = DefaultMaxContextLength
	}
	return o
}

// RetrievalFilters narrows retrieval candidates before similarity scoring.
// All supplied predicates are AND-combined; a nil field means no constraint,
// never "match empty".
type RetrievalFilters struct {
	// Category matches the chunk's category, case-insensitively.
	Category string `json:"category,omitempty"`

	// Brand matches the chunk's brand, case-insensitively.
	Brand string `json:"brand,omitempty"`

	// MinPrice is the inclusive lower price bound.
	MinPrice *float64 `json:"minPrice,omitempty"`

	// MaxPrice is the inclusive upper price bound.
	MaxPrice *float64 `json:"maxPrice,omitempty"`

	// MinRating is the inclusive lower rating bound.
	MinRating *float64 `json:"minRating,omitempty"`
}

// RetrievalResult is one scored retrieval candidate.
type RetrievalResult struct {
	// Entry is the matched store entry.
	Entry StoreEntry `json:"entry"`

	// Similarity is the cosine similarity against the query vector.
	Similarity float64 `json:"similarity"`
}

// SourceReference is the audit trail for one answer source, used to show
// "why this result matched".
type SourceReference struct {
	// ProductID identifies the matched product.
	ProductID string `json:"productId"`

	// ProductName is the matched product's display name.
	ProductName string `json:"productName"`

	// Category is the matched product's category.
	Category string `json:"category"`

	// Price is the matched product's price.
	Price float64 `json:"price"`

	// Similarity is the cosine similarity score.
	Similarity float64 `json:"similarity"`

	// Rank is the 1-based position in the ranked results.
	Rank int `json:"rank"`

	// MatchedChunkText is the chunk text the match was scored on, verbatim.
	MatchedChunkText string `json:"matchedChunkText"`

	// EmbeddingModel names the model that produced the vectors.
	EmbeddingModel string `json:"embeddingModel"`

	// SimilarityThreshold is the threshold the query ran with.
	SimilarityThreshold float64 `json:"similarityThreshold"`

	// TotalCandidates is the number of embedded chunks scanned.
	TotalCandidates int `json:"totalCandidates"`

	// Dimensions is the vector dimensionality of the query.
	Dimensions int `json:"dimensions"`
}

// Answer is the result of a retrieval-augmented query.
type Answer struct {
	// Text is the generated (or fixed terminal-state) answer.
	Text string `json:"answer"`

	// Sources are the audit references for the retrieved chunks, empty for
	// the EMPTY_KB and NO_MATCH terminal states.
	Sources []SourceReference `json:"sources"`

	// Retrieved are the raw scored candidates behind Sources.
	Retrieved []RetrievalResult `json:"-"`

	// Confidence is the mean similarity of Sources, 0 when there are none.
	Confidence float64 `json:"confidence"`
}

// StreamEventType discriminates streaming pipeline events.
type StreamEventType string

// Streaming event types, emitted in order: one sources event, any number of
// text events, one done event. The sources event is authoritative even if
// generation fails partway.
const (
	// StreamEventSources carries the source references, sent before any text.
	StreamEventSources StreamEventType = "sources"

	// StreamEventText carries one generated text fragment.
	StreamEventText StreamEventType = "text"

	// StreamEventError carries a terminal provider failure.
	StreamEventError StreamEventType = "error"

	// StreamEventDone marks the end of the stream.
	StreamEventDone StreamEventType = "done"
)

// StreamEvent is one message of a streaming answer.
type StreamEvent struct {
	// Type discriminates the payload.
	Type StreamEventType `json:"type"`

	// Text is the fragment for text events, or the message for error events.
	Text string `json:"data,omitempty"`

	// Sources is set on the sources event.
	Sources []SourceReference `json:"sources,omitempty"`

	// Err is set on error events.
	Err error `json:"-"`
}
