package cli

import (
	"context"
	"errors"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// mockKnowledgeService implements driving.KnowledgeService for CLI tests.
type mockKnowledgeService struct {
	status   domain.StoreStatus
	products []domain.Product
	chunks   []string
	appended *domain.AppendResult
	err      error

	initialized bool
	resetCalled bool
}

func (m *mockKnowledgeService) Initialize(_ context.Context) error {
	if m.err == nil {
		m.initialized = true
	}
	return m.err
}

func (m *mockKnowledgeService) Load(_ context.Context) error {
	return m.err
}

func (m *mockKnowledgeService) EmbedAll(_ context.Context) error {
	return m.err
}

func (m *mockKnowledgeService) AppendPending(
	_ context.Context, _ []domain.Product,
) (*domain.PendingAppend, error) {
	return nil, m.err
}

func (m *mockKnowledgeService) Append(
	_ context.Context, _ []domain.Product, _ [][]float32,
) (*domain.AppendResult, error) {
	return m.appended, m.err
}

func (m *mockKnowledgeService) StoreVectors(_ context.Context, _ [][]float32) error {
	return m.err
}

func (m *mockKnowledgeService) Status(_ context.Context) domain.StoreStatus {
	return m.status
}

func (m *mockKnowledgeService) Products(_ context.Context) []domain.Product {
	return m.products
}

func (m *mockKnowledgeService) ChunkTexts(_ context.Context) []string {
	return m.chunks
}

func (m *mockKnowledgeService) Reset(_ context.Context) error {
	if m.err == nil {
		m.resetCalled = true
	}
	return m.err
}

func (m *mockKnowledgeService) HasEmbeddings(_ context.Context) bool {
	return m.status.Ready()
}

// mockAssistantService implements driving.AssistantService for CLI tests.
type mockAssistantService struct {
	answer *domain.Answer
	events []domain.StreamEvent
	err    error
}

func (m *mockAssistantService) Ask(
	_ context.Context, _ string, _ domain.QueryOptions,
) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAssistantService) AskStream(
	_ context.Context, _ string, _ domain.QueryOptions,
) (<-chan domain.StreamEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	events := make(chan domain.StreamEvent, len(m.events))
	for _, event := range m.events {
		events <- event
	}
	close(events)
	return events, nil
}

func (m *mockAssistantService) SuggestedQuestions(_ context.Context) []string {
	return nil
}

// mockSettingsService implements driving.SettingsService for CLI tests.
type mockSettingsService struct {
	settings    domain.AppSettings
	err         error
	validateErr error
	saved       bool
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	settings := m.settings
	return &settings, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if m.err == nil {
		m.settings = *settings
		m.saved = true
	}
	return m.err
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.err == nil {
		m.settings.Embedding.Provider = provider
		m.settings.Embedding.Model = model
		m.settings.Embedding.APIKey = apiKey
	}
	return m.err
}

func (m *mockSettingsService) SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.err == nil {
		m.settings.Generation.Provider = provider
		m.settings.Generation.Model = model
		m.settings.Generation.APIKey = apiKey
	}
	return m.err
}

func (m *mockSettingsService) SetCatalogPath(path string) error {
	if m.err == nil {
		m.settings.Knowledge.CatalogPath = path
	}
	return m.err
}

func (m *mockSettingsService) SetMaxProducts(n int) error {
	if m.err == nil {
		m.settings.Knowledge.MaxProducts = n
	}
	return m.err
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.validateErr
}

func (m *mockSettingsService) ValidateGenerationConfig() error {
	return m.validateErr
}

// mockAssistantServiceError always fails.
type mockAssistantServiceError struct{}

func (m *mockAssistantServiceError) Ask(
	_ context.Context, _ string, _ domain.QueryOptions,
) (*domain.Answer, error) {
	return nil, errors.New("ask failed")
}

func (m *mockAssistantServiceError) AskStream(
	_ context.Context, _ string, _ domain.QueryOptions,
) (<-chan domain.StreamEvent, error) {
	return nil, errors.New("ask failed")
}

func (m *mockAssistantServiceError) SuggestedQuestions(_ context.Context) []string {
	return nil
}

// setupTestServices swaps the package-level services for mocks and
// returns a cleanup restoring the originals.
func setupTestServices() func() {
	oldKnowledge := knowledgeService
	oldAssistant := assistantService
	oldSettings := settingsService

	knowledgeService = &mockKnowledgeService{
		status: domain.StoreStatus{
			Initialized:    true,
			Products:       2,
			Chunks:         2,
			Embeddings:     2,
			BaseProducts:   2,
			MaxProducts:    domain.DefaultMaxProducts,
			EmbeddingModel: "nomic-embed-text",
			Dimensions:     768,
		},
		products: []domain.Product{
			{ID: "prod-1", Name: "X200 Headphones", Category: "Audio", Price: 89, Rating: 4.5, SoldCount: 320},
			{ID: "prod-2", Name: "Trail Backpack", Category: "Outdoor", Price: 120, Rating: 4.8, SoldCount: 95},
		},
		appended: &domain.AppendResult{Added: 1, Total: 3},
	}
	assistantService = &mockAssistantService{
		answer: &domain.Answer{
			Text: "The X200 headphones cost $89.",
			Sources: []domain.SourceReference{
				{ProductID: "prod-1", ProductName: "X200 Headphones", Price: 89, Similarity: 0.91, Rank: 1},
			},
			Confidence: 0.91,
		},
		events: []domain.StreamEvent{
			{Type: domain.StreamEventSources, Sources: []domain.SourceReference{
				{ProductID: "prod-1", ProductName: "X200 Headphones", Price: 89, Similarity: 0.91, Rank: 1},
			}},
			{Type: domain.StreamEventText, Text: "The X200 headphones "},
			{Type: domain.StreamEventText, Text: "cost $89."},
			{Type: domain.StreamEventDone},
		},
	}
	settingsService = &mockSettingsService{
		settings: domain.DefaultAppSettings(),
	}

	return func() {
		knowledgeService = oldKnowledge
		assistantService = oldAssistant
		settingsService = oldSettings
	}
}
