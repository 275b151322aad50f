package services

import (
	"math"
	"sort"
	"strings"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// CosineSimilarity returns the cosine of the angle between two vectors, in
// [-1, 1]. It returns 0 for zero-length vectors, mismatched dimensions, and
// zero-magnitude vectors: such pairs carry no ranking signal, and 0 falls
// below every positive threshold instead of corrupting the ordering with NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RetrieveTopK scores the query vector against every embedded entry (full
// scan - catalog sizes in the low hundreds make an approximate index more
// machinery than win), discards scores strictly below threshold, ranks
// descending, and truncates to topK.
//
// Ties preserve store order: first-inserted wins, since no other tie-break
// signal exists. An empty result is the normal "no relevant products" case,
// not an error.
func RetrieveTopK(queryVector []float32, entries []domain.StoreEntry, topK int, threshold float64) []domain.RetrievalResult {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	results := make([]domain.RetrievalResult, 0, len(entries))
	for i := range entries {
		if !entries[i].Embedded() {
			continue
		}
		sim := CosineSimilarity(queryVector, entries[i].Vector)
		if sim < threshold {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Entry:      entries[i],
			Similarity: sim,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// RetrieveWithFilters narrows the candidate set by the supplied predicates
// before similarity scoring, then applies the same ranking procedure as
// RetrieveTopK. Predicates are AND-combined; an absent predicate means no
// constraint.
func RetrieveWithFilters(queryVector []float32, entries []domain.StoreEntry, topK int, threshold float64, filters *domain.RetrievalFilters) []domain.RetrievalResult {
	if filters == nil {
		return RetrieveTopK(queryVector, entries, topK, threshold)
	}

	filtered := make([]domain.StoreEntry, 0, len(entries))
	for i := range entries {
		if matchesFilters(&entries[i].Chunk.Metadata, filters) {
			filtered = append(filtered, entries[i])
		}
	}
	return RetrieveTopK(queryVector, filtered, topK, threshold)
}

func matchesFilters(md *domain.ChunkMetadata, f *domain.RetrievalFilters) bool {
	if f.Category != "" && !strings.EqualFold(md.Category, f.Category) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(md.Brand, f.Brand) {
		return false
	}
	if f.MinPrice != nil && md.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && md.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && md.Rating < *f.MinRating {
		return false
	}
	return true
}
