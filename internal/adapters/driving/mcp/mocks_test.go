package mcp

import (
	"context"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	answer    *domain.Answer
	questions []string
	err       error
}

func (m *mockAssistantService) Ask(
	_ context.Context,
	_ string,
	_ domain.QueryOptions,
) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAssistantService) AskStream(
	_ context.Context,
	_ string,
	_ domain.QueryOptions,
) (<-chan domain.StreamEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	events := make(chan domain.StreamEvent)
	close(events)
	return events, nil
}

func (m *mockAssistantService) SuggestedQuestions(_ context.Context) []string {
	return m.questions
}

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	status   domain.StoreStatus
	products []domain.Product
	chunks   []string
	appended *domain.AppendResult
	err      error
}

func (m *mockKnowledgeService) Initialize(_ context.Context) error {
	return m.err
}

func (m *mockKnowledgeService) Load(_ context.Context) error {
	return m.err
}

func (m *mockKnowledgeService) EmbedAll(_ context.Context) error {
	return m.err
}

func (m *mockKnowledgeService) AppendPending(
	_ context.Context,
	_ []domain.Product,
) (*domain.PendingAppend, error) {
	return nil, m.err
}

func (m *mockKnowledgeService) Append(
	_ context.Context,
	_ []domain.Product,
	_ [][]float32,
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
	return m.err
}

func (m *mockKnowledgeService) HasEmbeddings(_ context.Context) bool {
	return m.status.Ready()
}
