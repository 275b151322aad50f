// Package google provides an embedding service adapter using the Google
// Generative Language API.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel      = "text-embedding-004"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 768

	// maxBatchSize is the API's per-request content limit.
	maxBatchSize = 100

	// defaultRequestsPerMinute paces batch requests under the free-tier
	// quota instead of burning it and surfacing 429s mid-load.
	defaultRequestsPerMinute = 60
)

// Config holds configuration for the Google embedding service.
type Config struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: generativelanguage.googleapis.com/v1beta).
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerMinute caps the batch request rate (default: 60).
	RequestsPerMinute int
}

// EmbeddingService generates embeddings using the Google Generative
// Language API.
type EmbeddingService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *rate.Limiter
}

type embedContent struct {
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

type batchEmbedRequest struct {
	Requests []struct {
		Model   string       `json:"model"`
		Content embedContent `json:"content"`
	} `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new Google embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewProviderError("google", domain.ProviderErrConfig, "API key is required", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, domain.NewProviderError("google", domain.ProviderErrUnknown, "no embedding returned", nil)
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts, preserving input
// order. Requests are paced by the rate limiter and split to the API's
// batch ceiling.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		end := min(start+maxBatchSize, len(texts))
		batch, err := s.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var reqBody batchEmbedRequest
	reqBody.Requests = make([]struct {
		Model   string       `json:"model"`
		Content embedContent `json:"content"`
	}, len(texts))
	for i, text := range texts {
		reqBody.Requests[i].Model = "models/" + s.model
		reqBody.Requests[i].Content.Parts = []struct {
			Text string `json:"text"`
		}{{Text: text}}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewProviderError("google", domain.ProviderErrUnavailable, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewProviderError("google", domain.ProviderErrUnavailable, "read response", err)
	}

	var embedResp batchEmbedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, domain.NewProviderError("google", domain.ClassifyHTTPStatus(resp.StatusCode),
				fmt.Sprintf("status %d", resp.StatusCode), nil)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || embedResp.Error != nil {
		message := fmt.Sprintf("status %d", resp.StatusCode)
		if embedResp.Error != nil {
			message = embedResp.Error.Message
		}
		return nil, domain.NewProviderError("google", domain.ClassifyHTTPStatus(resp.StatusCode), message, nil)
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, domain.NewProviderError("google", domain.ProviderErrUnknown,
			fmt.Sprintf("%d embeddings returned for %d texts", len(embedResp.Embeddings), len(texts)), nil)
	}

	embeddings := make([][]float32, len(texts))
	for i := range embedResp.Embeddings {
		embeddings[i] = embedResp.Embeddings[i].Values
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return DefaultDimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by fetching the model's metadata.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/models/%s", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.NewProviderError("google", domain.ProviderErrUnavailable, "ping failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewProviderError("google", domain.ClassifyHTTPStatus(resp.StatusCode),
			fmt.Sprintf("ping returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
