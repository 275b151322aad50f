package driven

import "context"

// GenerationService produces answer text from an augmented prompt.
//
// Implementations may include:
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Google (Gemini)
//   - Ollama (local models)
//
// Failures are reported as *domain.ProviderError with a machine-readable
// category; the core never retries internally and never substitutes an
// invented answer for a failed generation.
type GenerationService interface {
	// Generate produces a completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces a completion incrementally, invoking emit for
	// each text fragment as the provider yields it. It returns after the
	// final fragment, or with the provider error that interrupted the
	// stream. Fragments already emitted remain valid on error.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions, emit func(fragment string) error) error

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup to verify connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
