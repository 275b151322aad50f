package driving

import (
	"context"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// AssistantService answers natural-language product questions over the
// knowledge store.
//
// An empty knowledge base and a no-match retrieval are normal terminal
// states returning well-formed answers with zero confidence, not errors.
// Provider failures surface as *domain.ProviderError and are never retried
// or masked by an invented answer.
type AssistantService interface {
	// Ask answers a question in one shot.
	Ask(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)

	// AskStream answers a question incrementally. The returned channel
	// yields one sources event, then text fragments, then a done event;
	// an error event replaces done when generation fails partway. The
	// channel is closed after the terminal event. The sources event is
	// authoritative even when generation subsequently fails.
	AskStream(ctx context.Context, question string, opts domain.QueryOptions) (<-chan domain.StreamEvent, error)

	// SuggestedQuestions returns starter questions for chat surfaces.
	SuggestedQuestions(ctx context.Context) []string
}
