package llmprovider

import (
	"context"
)

// Provider defines the interface that all LLM providers must implement.
// This abstraction allows swapping the hosted model (Gemini, Anthropic,
// OpenRouter, or the offline lorem mock) without touching the callers.
//
// Types used by this interface:
//   - GenerateRequest, Message: defined in request.go
//   - GenerateResponse: defined in response.go
type Provider interface {
	// GenerateResponse generates a complete response from the LLM provider (blocking).
	// When req.Params.ResponseFormat asks for a JSON schema, the provider must
	// return the structured payload in a way StructuredOutput can extract.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider identifier (e.g., "anthropic", "google", "lorem")
	Name() ProviderID

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}
