package driving

import "github.com/shoplens/shoplens-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetGenerationProvider configures the generation provider.
	SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error

	// SetCatalogPath sets the base catalog file path.
	SetCatalogPath(path string) error

	// SetMaxProducts sets the knowledge store capacity ceiling.
	SetMaxProducts(n int) error

	// Validate checks if current settings can run the assistant.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration
	// by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateGenerationConfig validates the current generation
	// configuration by pinging the provider.
	ValidateGenerationConfig() error
}
