package services

import (
	"fmt"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"
	keyGenProvider     = "generation.provider"
	keyGenModel        = "generation.model"
	keyGenBaseURL      = "generation.base_url"
	keyGenAPIKey       = "generation.api_key"
	keyCatalogPath     = "knowledge.catalog_path"
	keyVectorsPath     = "knowledge.vectors_path"
	keyMaxProducts     = "knowledge.max_products"
	keyWatchCatalog    = "knowledge.watch_catalog"
	keyTopK            = "assistant.top_k"
	keyThreshold       = "assistant.similarity_threshold"
	keyTemperature     = "assistant.temperature"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
		},
		Generation: domain.GenerationSettings{
			Provider: s.getProvider(keyGenProvider, defaults.Generation.Provider),
			Model:    s.getString(keyGenModel, defaults.Generation.Model),
			BaseURL:  s.configStore.GetString(keyGenBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyGenAPIKey),
		},
		Knowledge: domain.KnowledgeSettings{
			CatalogPath:  s.getString(keyCatalogPath, defaults.Knowledge.CatalogPath),
			VectorsPath:  s.configStore.GetString(keyVectorsPath),
			MaxProducts:  s.getInt(keyMaxProducts, defaults.Knowledge.MaxProducts),
			WatchCatalog: s.getBool(keyWatchCatalog, defaults.Knowledge.WatchCatalog),
		},
		Assistant: domain.AssistantSettings{
			TopK:                s.getInt(keyTopK, defaults.Assistant.TopK),
			SimilarityThreshold: s.getFloat(keyThreshold, defaults.Assistant.SimilarityThreshold),
			Temperature:         s.getFloat(keyTemperature, defaults.Assistant.Temperature),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.Embedding.Dimensions > 0 {
		if err := s.configStore.Set(keyEmbedDimensions, settings.Embedding.Dimensions); err != nil {
			return fmt.Errorf("save embedding dimensions: %w", err)
		}
	}

	// Save generation settings
	if err := s.configStore.Set(keyGenProvider, settings.Generation.Provider.String()); err != nil {
		return fmt.Errorf("save generation provider: %w", err)
	}
	if err := s.configStore.Set(keyGenModel, settings.Generation.Model); err != nil {
		return fmt.Errorf("save generation model: %w", err)
	}
	if err := s.configStore.Set(keyGenBaseURL, settings.Generation.BaseURL); err != nil {
		return fmt.Errorf("save generation base_url: %w", err)
	}
	if settings.Generation.APIKey != "" {
		if err := s.configStore.Set(keyGenAPIKey, settings.Generation.APIKey); err != nil {
			return fmt.Errorf("save generation api_key: %w", err)
		}
	}

	// Save knowledge settings
	if err := s.configStore.Set(keyCatalogPath, settings.Knowledge.CatalogPath); err != nil {
		return fmt.Errorf("save catalog path: %w", err)
	}
	if err := s.configStore.Set(keyVectorsPath, settings.Knowledge.VectorsPath); err != nil {
		return fmt.Errorf("save vectors path: %w", err)
	}
	if err := s.configStore.Set(keyMaxProducts, settings.Knowledge.MaxProducts); err != nil {
		return fmt.Errorf("save max products: %w", err)
	}
	if err := s.configStore.Set(keyWatchCatalog, settings.Knowledge.WatchCatalog); err != nil {
		return fmt.Errorf("save watch catalog: %w", err)
	}

	// Save assistant settings
	if err := s.configStore.Set(keyTopK, settings.Assistant.TopK); err != nil {
		return fmt.Errorf("save top_k: %w", err)
	}
	if err := s.configStore.Set(keyThreshold, settings.Assistant.SimilarityThreshold); err != nil {
		return fmt.Errorf("save similarity threshold: %w", err)
	}
	if err := s.configStore.Set(keyTemperature, settings.Assistant.Temperature); err != nil {
		return fmt.Errorf("save temperature: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Record dimensions for known models so a pre-computed vectors file can
	// be sanity-checked without a provider round trip.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetGenerationProvider configures the generation provider.
func (s *SettingsService) SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid generation provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Generation.Model = model
	} else if defaultModel, ok := domain.DefaultGenerationModels()[provider]; ok {
		settings.Generation.Model = defaultModel
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.Generation.BaseURL == "" {
			settings.Generation.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Generation.BaseURL = ""
	}

	settings.Generation.APIKey = apiKey

	return s.Save(settings)
}

// SetCatalogPath sets the base catalog file path.
func (s *SettingsService) SetCatalogPath(path string) error {
	if path == "" {
		return fmt.Errorf("catalog path: %w", domain.ErrInvalidInput)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Knowledge.CatalogPath = path
	return s.Save(settings)
}

// SetMaxProducts sets the knowledge store capacity ceiling.
func (s *SettingsService) SetMaxProducts(n int) error {
	if n <= 0 {
		return fmt.Errorf("max products must be positive: %w", domain.ErrInvalidInput)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Knowledge.MaxProducts = n
	return s.Save(settings)
}

// Validate checks if current settings can run the assistant.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider is not configured")
	}
	if !settings.Generation.IsConfigured() {
		return fmt.Errorf("generation provider is not configured")
	}
	if settings.Knowledge.CatalogPath == "" {
		return fmt.Errorf("catalog path is not configured")
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateGenerationConfig validates the current generation configuration by pinging the provider.
func (s *SettingsService) ValidateGenerationConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateGeneration(&settings.Generation)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
