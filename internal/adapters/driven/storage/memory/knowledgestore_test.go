package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

func makeProducts(n int, prefix string) ([]domain.Product, []domain.Chunk) {
	products := make([]domain.Product, n)
	chunks := make([]domain.Chunk, n)
	for i := range products {
		id := fmt.Sprintf("%s-%d", prefix, i+1)
		products[i] = domain.Product{ID: id, Name: "Product " + id, Category: "Electronics", Price: 100}
		chunks[i] = domain.Chunk{ID: "chunk-" + id, ProductID: id, Text: "text for " + id}
	}
	return products, chunks
}

func makeVectors(n, dims int) [][]float32 {
	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float32, dims)
		v[i%dims] = 1
		vectors[i] = v
	}
	return vectors
}

func TestNewKnowledgeStore(t *testing.T) {
	store := NewKnowledgeStore(10)
	require.NotNil(t, store)
	assert.Equal(t, 10, store.Status().MaxProducts)
	assert.False(t, store.Status().Initialized)
}

func TestNewKnowledgeStore_DefaultCapacity(t *testing.T) {
	store := NewKnowledgeStore(0)
	assert.Equal(t, domain.DefaultMaxProducts, store.Status().MaxProducts)
}

func TestKnowledgeStore_ReplaceBase(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(3, "p")

	err := store.ReplaceBase(products, chunks)
	require.NoError(t, err)

	status := store.Status()
	assert.True(t, status.Initialized)
	assert.Equal(t, 3, status.Products)
	assert.Equal(t, 3, status.Chunks)
	assert.Equal(t, 0, status.Embeddings)
	assert.Equal(t, 3, status.BaseProducts)
	assert.Equal(t, 0, status.CustomProducts)
}

func TestKnowledgeStore_ReplaceBase_TruncatesToCapacity(t *testing.T) {
	store := NewKnowledgeStore(2)
	products, chunks := makeProducts(5, "p")

	require.NoError(t, store.ReplaceBase(products, chunks))
	assert.Equal(t, 2, store.Status().Products)
}

func TestKnowledgeStore_ReplaceBase_DeduplicatesFirstWins(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(3, "p")
	products[2].ID = products[0].ID
	products[2].Name = "Impostor"

	require.NoError(t, store.ReplaceBase(products, chunks))

	held := store.Products()
	require.Len(t, held, 2)
	assert.Equal(t, "Product p-1", held[0].Name)
}

func TestKnowledgeStore_ReplaceBase_CountMismatch(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(3, "p")

	err := store.ReplaceBase(products, chunks[:2])
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKnowledgeStore_ReplaceBase_DiscardsVectorsAndCustom(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))
	require.NoError(t, store.AttachVectors(makeVectors(2, 4), "model-a"))

	custom, customChunks := makeProducts(1, "c")
	_, err := store.Append(custom, customChunks, makeVectors(1, 4), "model-a")
	require.NoError(t, err)

	require.NoError(t, store.ReplaceBase(products, chunks))

	status := store.Status()
	assert.Equal(t, 2, status.Products)
	assert.Equal(t, 0, status.Embeddings)
	assert.Equal(t, 0, status.CustomProducts)
	assert.Empty(t, status.EmbeddingModel)
	assert.False(t, store.HasEmbeddings())
}

func TestKnowledgeStore_AttachVectors(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(3, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	err := store.AttachVectors(makeVectors(3, 4), "text-embedding-3-small")
	require.NoError(t, err)

	status := store.Status()
	assert.Equal(t, 3, status.Embeddings)
	assert.Equal(t, "text-embedding-3-small", status.EmbeddingModel)
	assert.Equal(t, 4, status.Dimensions)
	assert.True(t, store.HasEmbeddings())
	assert.True(t, status.Ready())
}

func TestKnowledgeStore_AttachVectors_CountMismatch(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(3, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	err := store.AttachVectors(makeVectors(2, 4), "m")
	assert.ErrorIs(t, err, domain.ErrVectorCountMismatch)

	// A failed attach leaves the store untouched.
	assert.Equal(t, 0, store.Status().Embeddings)
}

func TestKnowledgeStore_AttachVectors_RaggedDimensions(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	vectors := [][]float32{{1, 0, 0}, {1, 0}}
	err := store.AttachVectors(vectors, "m")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestKnowledgeStore_AttachVectors_NotInitialized(t *testing.T) {
	store := NewKnowledgeStore(10)
	err := store.AttachVectors([][]float32{}, "m")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestKnowledgeStore_FilterNew(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(3, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	candidates, _ := makeProducts(2, "c")
	candidates = append(candidates, products[0]) // duplicate

	accepted, skipped := store.FilterNew(candidates)
	assert.Len(t, accepted, 2)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "c-1", accepted[0].ID)
	assert.Equal(t, "c-2", accepted[1].ID)

	// FilterNew never mutates.
	assert.Equal(t, 3, store.Status().Products)
}

func TestKnowledgeStore_FilterNew_CapacityTruncation(t *testing.T) {
	store := NewKnowledgeStore(4)
	products, chunks := makeProducts(3, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	candidates, _ := makeProducts(3, "c")
	accepted, skipped := store.FilterNew(candidates)
	assert.Len(t, accepted, 1)
	assert.Equal(t, 2, skipped)
}

func TestKnowledgeStore_FilterNew_DuplicateWithinBatch(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(1, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	candidates, _ := makeProducts(2, "c")
	candidates[1].ID = candidates[0].ID

	accepted, skipped := store.FilterNew(candidates)
	assert.Len(t, accepted, 1)
	assert.Equal(t, 1, skipped)
}

func TestKnowledgeStore_Append(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))
	require.NoError(t, store.AttachVectors(makeVectors(2, 4), "m"))

	custom, customChunks := makeProducts(2, "c")
	result, err := store.Append(custom, customChunks, makeVectors(2, 4), "m")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.BaseCount)
	assert.Equal(t, 2, result.CustomCount)
	assert.Equal(t, 4, store.Status().Embeddings)
}

func TestKnowledgeStore_Append_DuplicatesSkippedNotErrored(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	result, err := store.Append(products, chunks, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 2, result.Total)
}

func TestKnowledgeStore_Append_PartialAcceptAtCapacity(t *testing.T) {
	store := NewKnowledgeStore(3)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	custom, customChunks := makeProducts(3, "c")
	result, err := store.Append(custom, customChunks, nil, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, "c-1", store.Products()[2].ID)
}

func TestKnowledgeStore_Append_VectorAlignmentSurvivesFiltering(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))
	require.NoError(t, store.AttachVectors(makeVectors(2, 4), "m"))

	// First candidate is a duplicate; its vector must be dropped with it,
	// not shifted onto the survivor.
	custom, customChunks := makeProducts(2, "c")
	custom[0].ID = "p-1"
	vectors := [][]float32{{9, 9, 9, 9}, {0, 0, 1, 0}}

	result, err := store.Append(custom, customChunks, vectors, "m")
	require.NoError(t, err)
	require.Equal(t, 1, result.Added)

	snap := store.Snapshot()
	last := snap.Entries[len(snap.Entries)-1]
	assert.Equal(t, "c-2", last.Product.ID)
	assert.Equal(t, []float32{0, 0, 1, 0}, last.Vector)
}

func TestKnowledgeStore_Append_VectorCountMismatch(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	custom, customChunks := makeProducts(2, "c")
	_, err := store.Append(custom, customChunks, makeVectors(1, 4), "m")
	assert.ErrorIs(t, err, domain.ErrVectorCountMismatch)
	assert.Equal(t, 2, store.Status().Products)
}

func TestKnowledgeStore_Append_DimensionMismatch(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))
	require.NoError(t, store.AttachVectors(makeVectors(2, 4), "m"))

	custom, customChunks := makeProducts(1, "c")
	_, err := store.Append(custom, customChunks, makeVectors(1, 8), "m")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestKnowledgeStore_Append_ModelMismatch(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))
	require.NoError(t, store.AttachVectors(makeVectors(2, 4), "model-a"))

	custom, customChunks := makeProducts(1, "c")
	_, err := store.Append(custom, customChunks, makeVectors(1, 4), "model-b")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestKnowledgeStore_Append_NotInitialized(t *testing.T) {
	store := NewKnowledgeStore(10)
	custom, customChunks := makeProducts(1, "c")
	_, err := store.Append(custom, customChunks, nil, "")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestKnowledgeStore_Append_UnembeddedEntriesNotRetrievable(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(1, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))
	require.NoError(t, store.AttachVectors(makeVectors(1, 4), "m"))

	custom, customChunks := makeProducts(1, "c")
	_, err := store.Append(custom, customChunks, nil, "")
	require.NoError(t, err)

	// Listed but not embedded.
	assert.Len(t, store.Products(), 2)
	assert.Len(t, store.Snapshot().EmbeddedEntries(), 1)
}

func TestKnowledgeStore_Reset(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))
	require.NoError(t, store.AttachVectors(makeVectors(2, 4), "m"))

	custom, customChunks := makeProducts(3, "c")
	_, err := store.Append(custom, customChunks, makeVectors(3, 4), "m")
	require.NoError(t, err)

	require.NoError(t, store.Reset())

	status := store.Status()
	assert.Equal(t, 2, status.Products)
	assert.Equal(t, 0, status.CustomProducts)
	// Base vectors survive a reset.
	assert.Equal(t, 2, status.Embeddings)
}

func TestKnowledgeStore_Reset_NotInitialized(t *testing.T) {
	store := NewKnowledgeStore(10)
	assert.ErrorIs(t, store.Reset(), domain.ErrNotInitialized)
}

func TestKnowledgeStore_Snapshot_IsolatedFromMutations(t *testing.T) {
	store := NewKnowledgeStore(10)
	products, chunks := makeProducts(2, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	before := store.Snapshot()
	require.NoError(t, store.AttachVectors(makeVectors(2, 4), "m"))

	// The old snapshot still shows the pre-attach state.
	assert.False(t, before.Entries[0].Embedded())
	assert.True(t, store.Snapshot().Entries[0].Embedded())
}

func TestKnowledgeStore_ConcurrentReadersAndWriters(t *testing.T) {
	store := NewKnowledgeStore(200)
	products, chunks := makeProducts(10, "p")
	require.NoError(t, store.ReplaceBase(products, chunks))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				custom, customChunks := makeProducts(1, fmt.Sprintf("w%d-%d", w, i))
				_, err := store.Append(custom, customChunks, nil, "")
				assert.NoError(t, err)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				snap := store.Snapshot()
				// Entry and counter views are internally consistent.
				assert.Equal(t, len(snap.Entries), snap.BaseCount+snap.CustomCount)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10+4*20, store.Status().Products)
}
