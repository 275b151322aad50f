package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driving"
	"github.com/shoplens/shoplens-cli/internal/logger"
)

// Ensure AssistantService implements the interfaces.
var (
	_ driving.AssistantService = (*AssistantService)(nil)
	_ driven.PromptStoreAware  = (*AssistantService)(nil)
)

// AssistantService runs the retrieval-augmented answering pipeline:
// embed the question, rank chunks by cosine similarity, augment the prompt
// with the ranked context, and generate an answer with full source
// attribution.
//
// An empty knowledge base and a no-match retrieval are terminal states
// answered with fixed text and zero confidence. Provider failures propagate
// as *domain.ProviderError; the service never invents an answer to mask one.
type AssistantService struct {
	store     driven.KnowledgeStore
	embedder  driven.EmbeddingService
	generator driven.GenerationService
	prompts   driven.PromptStore      // optional
	history   driven.ChatHistoryStore // optional

	// session groups this process run's recorded messages into one
	// conversation.
	session string
}

// NewAssistantService creates a new assistant service. The history store is
// optional (can be nil): without it conversations are not recorded.
func NewAssistantService(
	store driven.KnowledgeStore,
	embedder driven.EmbeddingService,
	generator driven.GenerationService,
	history driven.ChatHistoryStore,
) *AssistantService {
	return &AssistantService{
		store:     store,
		embedder:  embedder,
		generator: generator,
		history:   history,
		session:   uuid.NewString(),
	}
}

// SetSession makes subsequent exchanges record under an existing session id,
// letting chat surfaces resume a stored conversation.
func (s *AssistantService) SetSession(sessionID string) {
	if sessionID != "" {
		s.session = sessionID
	}
}

// Session returns the current recording session id.
func (s *AssistantService) Session() string {
	return s.session
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AssistantService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// systemPrompt returns the configured answer system prompt, falling back to
// the built-in default.
func (s *AssistantService) systemPrompt() string {
	if s.prompts != nil {
		if p, err := s.prompts.Load(driven.PromptAnswerSystem); err == nil && p != "" {
			return p
		}
	}
	return DefaultAnswerSystemPrompt
}

// retrieval is the shared front half of Ask and AskStream: question
// embedding plus ranked retrieval against one consistent snapshot.
type retrieval struct {
	results []domain.RetrievalResult
	sources []domain.SourceReference
	prompt  string
	// terminal is a complete answer for the EMPTY_KB and NO_MATCH states;
	// nil means generation should proceed.
	terminal *domain.Answer
}

func (s *AssistantService) retrieve(ctx context.Context, question string, opts domain.QueryOptions) (*retrieval, error) {
	snap := s.store.Snapshot()
	candidates := snap.EmbeddedEntries()
	if len(candidates) == 0 {
		logger.Debug("Knowledge base empty, returning fixed answer")
		return &retrieval{terminal: &domain.Answer{
			Text:    domain.MsgKnowledgeBaseNotReady,
			Sources: []domain.SourceReference{},
		}}, nil
	}

	// The store can be queryable without a configured embedder when
	// vectors were precomputed; fail typed rather than dereference nil.
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	var results []domain.RetrievalResult
	if opts.Filters != nil {
		results = RetrieveWithFilters(queryVector, candidates, opts.TopK, opts.SimilarityThreshold, opts.Filters)
	} else {
		results = RetrieveTopK(queryVector, candidates, opts.TopK, opts.SimilarityThreshold)
	}
	if len(results) == 0 {
		logger.Debug("No chunk cleared threshold %.2f over %d candidates", opts.SimilarityThreshold, len(candidates))
		return &retrieval{terminal: &domain.Answer{
			Text:    domain.MsgNoMatch,
			Sources: []domain.SourceReference{},
		}}, nil
	}

	sources := make([]domain.SourceReference, len(results))
	for i := range results {
		p := &results[i].Entry.Product
		sources[i] = domain.SourceReference{
			ProductID:           p.ID,
			ProductName:         p.Name,
			Category:            p.Category,
			Price:               p.Price,
			Similarity:          results[i].Similarity,
			Rank:                i + 1,
			MatchedChunkText:    results[i].Entry.Chunk.Text,
			EmbeddingModel:      snap.EmbeddingModel,
			SimilarityThreshold: opts.SimilarityThreshold,
			TotalCandidates:     len(candidates),
			Dimensions:          snap.Dimensions,
		}
	}

	logger.Debug("Retrieved %d/%d chunks, best similarity %.3f", len(results), len(candidates), results[0].Similarity)
	return &retrieval{
		results: results,
		sources: sources,
		prompt:  BuildAugmentedPrompt(s.systemPrompt(), question, results, opts.MaxContextLength),
	}, nil
}

// confidence is the mean similarity over the ranked sources.
func confidence(sources []domain.SourceReference) float64 {
	if len(sources) == 0 {
		return 0
	}
	sum := 0.0
	for i := range sources {
		sum += sources[i].Similarity
	}
	return sum / float64(len(sources))
}

// Ask answers a question in one shot.
func (s *AssistantService) Ask(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	if question == "" {
		return nil, domain.ErrInvalidInput
	}
	opts = opts.Normalized()

	logger.Section("Assistant Query")
	ret, err := s.retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	if ret.terminal != nil {
		s.record(ctx, question, ret.terminal)
		return ret.terminal, nil
	}
	if s.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	text, err := s.generator.Generate(ctx, ret.prompt, driven.GenerateOptions{
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		Text:       text,
		Sources:    ret.sources,
		Retrieved:  ret.results,
		Confidence: confidence(ret.sources),
	}
	s.record(ctx, question, answer)
	return answer, nil
}

// AskStream answers a question incrementally. Retrieval runs before the
// channel is returned, so setup failures (including question embedding)
// surface as the error return; only generation failures arrive as error
// events.
func (s *AssistantService) AskStream(ctx context.Context, question string, opts domain.QueryOptions) (<-chan domain.StreamEvent, error) {
	if question == "" {
		return nil, domain.ErrInvalidInput
	}
	opts = opts.Normalized()

	logger.Section("Assistant Query (streaming)")
	ret, err := s.retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	if ret.terminal == nil && s.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	events := make(chan domain.StreamEvent)
	go func() {
		defer close(events)

		if ret.terminal != nil {
			events <- domain.StreamEvent{Type: domain.StreamEventSources, Sources: ret.terminal.Sources}
			events <- domain.StreamEvent{Type: domain.StreamEventText, Text: ret.terminal.Text}
			events <- domain.StreamEvent{Type: domain.StreamEventDone}
			s.record(ctx, question, ret.terminal)
			return
		}

		// Sources go out before any text so consumers can render
		// attribution immediately; they stay authoritative even if
		// generation fails below.
		events <- domain.StreamEvent{Type: domain.StreamEventSources, Sources: ret.sources}

		var full []byte
		err := s.generator.GenerateStream(ctx, ret.prompt, driven.GenerateOptions{
			Temperature: opts.Temperature,
		}, func(fragment string) error {
			full = append(full, fragment...)
			select {
			case events <- domain.StreamEvent{Type: domain.StreamEventText, Text: fragment}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			events <- domain.StreamEvent{Type: domain.StreamEventError, Text: err.Error(), Err: err}
			return
		}

		events <- domain.StreamEvent{Type: domain.StreamEventDone}
		s.record(ctx, question, &domain.Answer{
			Text:       string(full),
			Sources:    ret.sources,
			Retrieved:  ret.results,
			Confidence: confidence(ret.sources),
		})
	}()
	return events, nil
}

// SuggestedQuestions returns starter questions for chat surfaces.
func (s *AssistantService) SuggestedQuestions(_ context.Context) []string {
	out := make([]string, len(domain.SuggestedQuestions))
	copy(out, domain.SuggestedQuestions)
	return out
}

// record best-effort persists a question/answer exchange.
func (s *AssistantService) record(ctx context.Context, question string, answer *domain.Answer) {
	if s.history == nil {
		return
	}
	now := time.Now().UTC()
	exchange := []*domain.ChatMessage{
		{
			ID:        uuid.NewString(),
			SessionID: s.session,
			Role:      domain.ChatRoleUser,
			Content:   question,
			CreatedAt: now,
		},
		{
			ID:         uuid.NewString(),
			SessionID:  s.session,
			Role:       domain.ChatRoleAssistant,
			Content:    answer.Text,
			Sources:    answer.Sources,
			Confidence: answer.Confidence,
			CreatedAt:  now,
		},
	}
	for _, msg := range exchange {
		if err := s.history.SaveMessage(ctx, msg); err != nil {
			logger.Warn("Saving chat message failed: %v", err)
			return
		}
	}
}
