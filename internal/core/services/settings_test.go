package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shoplens-cli/internal/adapters/driven/storage/memory"
	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

func newSettingsService() *SettingsService {
	return NewSettingsService(memory.NewConfigStore(), nil)
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc := newSettingsService()

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Knowledge.MaxProducts, settings.Knowledge.MaxProducts)
	assert.Equal(t, defaults.Assistant.TopK, settings.Assistant.TopK)
	assert.Equal(t, defaults.Assistant.SimilarityThreshold, settings.Assistant.SimilarityThreshold)
	assert.Equal(t, defaults.Assistant.Temperature, settings.Assistant.Temperature)
	assert.False(t, settings.Embedding.IsConfigured())
	assert.False(t, settings.Generation.IsConfigured())
}

func TestSettingsService_SaveAndGet_RoundTrip(t *testing.T) {
	svc := newSettingsService()

	in := domain.DefaultAppSettings()
	in.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "text-embedding-3-small",
		APIKey:   "sk-test",
	}
	in.Generation = domain.GenerationSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
		BaseURL:  "http://localhost:11434",
	}
	in.Knowledge.CatalogPath = "/data/catalog.json"
	in.Knowledge.MaxProducts = 50
	in.Knowledge.WatchCatalog = true
	in.Assistant.SimilarityThreshold = 0.45

	require.NoError(t, svc.Save(&in))

	out, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, out.Embedding.Provider)
	assert.Equal(t, "sk-test", out.Embedding.APIKey)
	assert.Equal(t, domain.AIProviderOllama, out.Generation.Provider)
	assert.Equal(t, "http://localhost:11434", out.Generation.BaseURL)
	assert.Equal(t, "/data/catalog.json", out.Knowledge.CatalogPath)
	assert.Equal(t, 50, out.Knowledge.MaxProducts)
	assert.True(t, out.Knowledge.WatchCatalog)
	assert.Equal(t, 0.45, out.Assistant.SimilarityThreshold)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	svc := newSettingsService()

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-test"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	// Default model is filled in and its dimensionality recorded.
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, 1536, settings.Embedding.Dimensions)
	assert.True(t, settings.Embedding.IsConfigured())
}

func TestSettingsService_SetEmbeddingProvider_OllamaNeedsNoKey(t *testing.T) {
	svc := newSettingsService()

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.True(t, settings.Embedding.IsConfigured())
}

func TestSettingsService_SetEmbeddingProvider_AnthropicRejected(t *testing.T) {
	svc := newSettingsService()
	err := svc.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "sk-ant")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support embeddings")
}

func TestSettingsService_SetEmbeddingProvider_MissingAPIKey(t *testing.T) {
	svc := newSettingsService()
	err := svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

func TestSettingsService_SetEmbeddingProvider_Invalid(t *testing.T) {
	svc := newSettingsService()
	assert.Error(t, svc.SetEmbeddingProvider("made-up", "", "key"))
}

func TestSettingsService_SetGenerationProvider(t *testing.T) {
	svc := newSettingsService()

	require.NoError(t, svc.SetGenerationProvider(domain.AIProviderAnthropic, "", "sk-ant"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.Generation.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.Generation.Model)
	assert.True(t, settings.Generation.IsConfigured())
}

func TestSettingsService_SetGenerationProvider_ExplicitModelWins(t *testing.T) {
	svc := newSettingsService()
	require.NoError(t, svc.SetGenerationProvider(domain.AIProviderOpenAI, "gpt-4o", "sk-test"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", settings.Generation.Model)
}

func TestSettingsService_SetCatalogPath(t *testing.T) {
	svc := newSettingsService()

	require.NoError(t, svc.SetCatalogPath("/data/catalog.json"))
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "/data/catalog.json", settings.Knowledge.CatalogPath)

	assert.ErrorIs(t, svc.SetCatalogPath(""), domain.ErrInvalidInput)
}

func TestSettingsService_SetMaxProducts(t *testing.T) {
	svc := newSettingsService()

	require.NoError(t, svc.SetMaxProducts(42))
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, settings.Knowledge.MaxProducts)

	assert.ErrorIs(t, svc.SetMaxProducts(0), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetMaxProducts(-1), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	svc := newSettingsService()

	// Nothing configured yet.
	assert.Error(t, svc.Validate())

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	assert.Error(t, svc.Validate(), "generation still missing")

	require.NoError(t, svc.SetGenerationProvider(domain.AIProviderOllama, "", ""))
	assert.Error(t, svc.Validate(), "catalog path still missing")

	require.NoError(t, svc.SetCatalogPath("/data/catalog.json"))
	assert.NoError(t, svc.Validate())
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc := newSettingsService()
	assert.Equal(t, domain.DefaultAppSettings(), svc.GetDefaults())
}

func TestSettingsService_ValidateConfigs_NilValidator(t *testing.T) {
	svc := newSettingsService()
	assert.NoError(t, svc.ValidateEmbeddingConfig())
	assert.NoError(t, svc.ValidateGenerationConfig())
}
