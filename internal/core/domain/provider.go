package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderErrorCategory is a machine-readable classification of an embedding
// or generation provider failure, so transports can map failures to backoff
// versus fatal handling without inspecting error text.
type ProviderErrorCategory string

// Provider failure categories.
const (
	// ProviderErrRateLimited means the provider throttled the request.
	ProviderErrRateLimited ProviderErrorCategory = "rate_limited"

	// ProviderErrUnavailable means the provider is unreachable or down.
	ProviderErrUnavailable ProviderErrorCategory = "unavailable"

	// ProviderErrAuth means the API key was missing, invalid, or forbidden.
	ProviderErrAuth ProviderErrorCategory = "auth"

	// ProviderErrNotFound means the model or endpoint does not exist.
	ProviderErrNotFound ProviderErrorCategory = "not_found"

	// ProviderErrPayloadTooLarge means the request exceeded size limits.
	ProviderErrPayloadTooLarge ProviderErrorCategory = "payload_too_large"

	// ProviderErrConfig means the adapter was misconfigured.
	ProviderErrConfig ProviderErrorCategory = "config"

	// ProviderErrUnknown is the fallback for unclassified failures.
	ProviderErrUnknown ProviderErrorCategory = "unknown"
)

// Retryable reports whether a caller may reasonably retry after backoff.
func (c ProviderErrorCategory) Retryable() bool {
	return c == ProviderErrRateLimited || c == ProviderErrUnavailable
}

// ProviderError is a categorized failure from an embedding or generation
// provider. Adapters construct it from structured API responses (HTTP status,
// API error type) rather than leaving call sites to match substrings.
type ProviderError struct {
	// Provider names the failing adapter, e.g. "openai" or "ollama".
	Provider string

	// Category is the machine-readable classification.
	Category ProviderErrorCategory

	// Message is the human-readable detail from the provider.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Category, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Category, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Category)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError constructs a categorized provider error.
func NewProviderError(provider string, category ProviderErrorCategory, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Category: category,
		Message:  message,
		Err:      err,
	}
}

// ClassifyHTTPStatus maps an HTTP status code to a failure category.
// Adapters use it for providers whose error bodies carry no type field.
func ClassifyHTTPStatus(status int) ProviderErrorCategory {
	switch {
	case status == http.StatusTooManyRequests:
		return ProviderErrRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ProviderErrAuth
	case status == http.StatusNotFound:
		return ProviderErrNotFound
	case status == http.StatusRequestEntityTooLarge:
		return ProviderErrPayloadTooLarge
	case status == http.StatusBadRequest:
		return ProviderErrConfig
	case status >= 500:
		return ProviderErrUnavailable
	default:
		return ProviderErrUnknown
	}
}

// ProviderErrorCategoryOf extracts the category from an error chain.
// Returns ProviderErrUnknown, false when the chain has no ProviderError.
func ProviderErrorCategoryOf(err error) (ProviderErrorCategory, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category, true
	}
	return ProviderErrUnknown, false
}
