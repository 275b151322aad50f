package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testProduct(id, name string) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          name,
		Description:   "test product",
		Price:         100,
		OriginalPrice: 120,
		Rating:        4.5,
		SoldCount:     10,
		Category:      "test",
		Tags:          []string{"tag1"},
		Specs:         map[string]any{"weight": "250g"},
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "shoplens.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Reopening runs migrate again against the same file.
	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()
}

func TestCustomProductStore_SaveAndList(t *testing.T) {
	store := setupTestStore(t)
	products := store.CustomProductStore()
	ctx := context.Background()

	in := []domain.Product{
		testProduct("p1", "First"),
		testProduct("p2", "Second"),
	}
	require.NoError(t, products.SaveProducts(ctx, in))

	out, err := products.ListProducts(ctx)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "p1", out[0].ID)
	assert.Equal(t, "First", out[0].Name)
	assert.Equal(t, 100.0, out[0].Price)
	assert.Equal(t, []string{"tag1"}, out[0].Tags)
	assert.Equal(t, "p2", out[1].ID)
}

func TestCustomProductStore_ListPreservesInsertionOrder(t *testing.T) {
	store := setupTestStore(t)
	products := store.CustomProductStore()
	ctx := context.Background()

	require.NoError(t, products.SaveProducts(ctx, []domain.Product{testProduct("z", "Last letter")}))
	require.NoError(t, products.SaveProducts(ctx, []domain.Product{testProduct("a", "First letter")}))

	out, err := products.ListProducts(ctx)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "z", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
}

func TestCustomProductStore_SaveReplacesByID(t *testing.T) {
	store := setupTestStore(t)
	products := store.CustomProductStore()
	ctx := context.Background()

	require.NoError(t, products.SaveProducts(ctx, []domain.Product{testProduct("p1", "Original")}))
	require.NoError(t, products.SaveProducts(ctx, []domain.Product{testProduct("p1", "Replaced")}))

	out, err := products.ListProducts(ctx)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "Replaced", out[0].Name)
}

func TestCustomProductStore_Count(t *testing.T) {
	store := setupTestStore(t)
	products := store.CustomProductStore()
	ctx := context.Background()

	count, err := products.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, products.SaveProducts(ctx, []domain.Product{
		testProduct("p1", "One"),
		testProduct("p2", "Two"),
	}))

	count, err = products.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCustomProductStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	products := store.CustomProductStore()
	ctx := context.Background()

	require.NoError(t, products.SaveProducts(ctx, []domain.Product{testProduct("p1", "One")}))

	require.NoError(t, products.DeleteProduct(ctx, "p1"))

	count, err := products.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCustomProductStore_Delete_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.CustomProductStore().DeleteProduct(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomProductStore_Clear(t *testing.T) {
	store := setupTestStore(t)
	products := store.CustomProductStore()
	ctx := context.Background()

	require.NoError(t, products.SaveProducts(ctx, []domain.Product{
		testProduct("p1", "One"),
		testProduct("p2", "Two"),
	}))

	require.NoError(t, products.Clear(ctx))

	count, err := products.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCustomProductStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.CustomProductStore().SaveProducts(ctx, []domain.Product{testProduct("p1", "Durable")}))
	require.NoError(t, store1.Close())

	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	out, err := store2.CustomProductStore().ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Durable", out[0].Name)
}

func TestChatHistoryStore_SaveAndList(t *testing.T) {
	store := setupTestStore(t)
	history := store.ChatHistoryStore()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	user := domain.ChatMessage{
		ID:        "m1",
		SessionID: "s1",
		Role:      domain.ChatRoleUser,
		Content:   "any earbuds under 2000?",
		CreatedAt: now,
	}
	answer := domain.ChatMessage{
		ID:        "m2",
		SessionID: "s1",
		Role:      domain.ChatRoleAssistant,
		Content:   "Yes, the Wireless Earbuds are 1290.",
		Sources: []domain.SourceReference{
			{ProductID: "p1", ProductName: "Wireless Earbuds", Similarity: 0.91, Rank: 1},
		},
		Confidence: 0.91,
		CreatedAt:  now.Add(time.Second),
	}
	require.NoError(t, history.SaveMessage(ctx, &user))
	require.NoError(t, history.SaveMessage(ctx, &answer))

	messages, err := history.ListMessages(ctx, "s1")
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, domain.ChatRoleUser, messages[0].Role)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, domain.ChatRoleAssistant, messages[1].Role)
	require.Len(t, messages[1].Sources, 1)
	assert.Equal(t, "p1", messages[1].Sources[0].ProductID)
	assert.InDelta(t, 0.91, messages[1].Confidence, 1e-9)
}

func TestChatHistoryStore_SaveMessage_RequiresIDs(t *testing.T) {
	store := setupTestStore(t)

	err := store.ChatHistoryStore().SaveMessage(context.Background(), &domain.ChatMessage{
		Role:    domain.ChatRoleUser,
		Content: "no ids",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatHistoryStore_ListMessages_EmptySession(t *testing.T) {
	store := setupTestStore(t)

	messages, err := store.ChatHistoryStore().ListMessages(context.Background(), "nope")

	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestChatHistoryStore_ListSessions_MostRecentFirst(t *testing.T) {
	store := setupTestStore(t)
	history := store.ChatHistoryStore()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, history.SaveMessage(ctx, &domain.ChatMessage{
		ID: "m1", SessionID: "old", Role: domain.ChatRoleUser, Content: "first", CreatedAt: base,
	}))
	require.NoError(t, history.SaveMessage(ctx, &domain.ChatMessage{
		ID: "m2", SessionID: "recent", Role: domain.ChatRoleUser, Content: "second", CreatedAt: base.Add(time.Minute),
	}))

	sessions, err := history.ListSessions(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"recent", "old"}, sessions)
}

func TestChatHistoryStore_ClearSession(t *testing.T) {
	store := setupTestStore(t)
	history := store.ChatHistoryStore()
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, history.SaveMessage(ctx, &domain.ChatMessage{
		ID: "m1", SessionID: "s1", Role: domain.ChatRoleUser, Content: "one", CreatedAt: now,
	}))
	require.NoError(t, history.SaveMessage(ctx, &domain.ChatMessage{
		ID: "m2", SessionID: "s2", Role: domain.ChatRoleUser, Content: "two", CreatedAt: now,
	}))

	require.NoError(t, history.ClearSession(ctx, "s1"))

	s1, err := history.ListMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, s1)

	s2, err := history.ListMessages(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, s2, 1)
}

func TestEmbeddingCache_GetMiss(t *testing.T) {
	store := setupTestStore(t)

	vec, hit, err := store.EmbeddingCache().Get(context.Background(), "model-a", "some chunk")

	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, vec)
}

func TestEmbeddingCache_PutAndGet(t *testing.T) {
	store := setupTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	in := []float32{0.1, -0.5, 1.25, 0}
	require.NoError(t, cache.Put(ctx, "model-a", "some chunk", in))

	out, hit, err := cache.Get(ctx, "model-a", "some chunk")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in, out)
}

func TestEmbeddingCache_KeyedByModel(t *testing.T) {
	store := setupTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "model-a", "chunk", []float32{1}))

	_, hit, err := cache.Get(ctx, "model-b", "chunk")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestEmbeddingCache_PutReplaces(t *testing.T) {
	store := setupTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "model-a", "chunk", []float32{1, 2}))
	require.NoError(t, cache.Put(ctx, "model-a", "chunk", []float32{3, 4}))

	out, hit, err := cache.Get(ctx, "model-a", "chunk")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []float32{3, 4}, out)
}

func TestEmbeddingCache_Put_RejectsEmptyVector(t *testing.T) {
	store := setupTestStore(t)

	err := store.EmbeddingCache().Put(context.Background(), "model-a", "chunk", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmbeddingCache_Purge(t *testing.T) {
	store := setupTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "model-a", "chunk one", []float32{1}))
	require.NoError(t, cache.Put(ctx, "model-a", "chunk two", []float32{2}))
	require.NoError(t, cache.Put(ctx, "model-b", "chunk one", []float32{3}))

	require.NoError(t, cache.Purge(ctx, "model-a"))

	_, hit, err := cache.Get(ctx, "model-a", "chunk one")
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = cache.Get(ctx, "model-b", "chunk one")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestFloat32BlobRoundTrip(t *testing.T) {
	in := []float32{0, -1.5, 3.14159, 1e-7}

	out := bytesToFloat32Slice(float32SliceToBytes(in))

	assert.Equal(t, in, out)
}

func TestFloat32BlobEmpty(t *testing.T) {
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
