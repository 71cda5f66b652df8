package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Provider implements the llmprovider.Provider interface for OpenRouter's unified API.
// OpenRouter proxies requests to multiple LLM providers (Anthropic, OpenAI, Google, etc.)
// using an OpenAI-compatible format.
//
// Common Issues:
// - 404 errors: Verify model name at https://openrouter.ai/models
// - Structured output: not every upstream model honours response_format
type Provider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// Options tunes the HTTP client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// NewProvider creates a new OpenRouter provider with the given API key.
func NewProvider(apiKey string, opts Options) (*Provider, error) {
	if apiKey == "" {
		return nil, llmprovider.ErrInvalidAPIKey
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmprovider.ProviderID {
	return llmprovider.ProviderOpenRouter
}

// SupportsModel returns true if this provider supports the given model.
// OpenRouter supports models in "provider/model" format (e.g., "anthropic/claude-3.5-sonnet")
// or special models like "openrouter/auto"
func (p *Provider) SupportsModel(model string) bool {
	return strings.Contains(model, "/")
}

// GenerateResponse generates a non-streaming response from OpenRouter.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &llmprovider.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by OpenRouter (must be in 'provider/model' format)",
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	openrouterReq, err := buildChatCompletionRequest(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := p.buildHTTPRequest(ctx, openrouterReq)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &llmprovider.ProviderError{
			Provider:  p.Name().String(),
			Message:   fmt.Sprintf("openrouter HTTP request failed: %v", err),
			Retryable: true,
			Err:       llmprovider.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(req.Model, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	response, err := convertFromChatCompletionResponse(&chatResp)
	if err != nil {
		return nil, fmt.Errorf("failed to convert response: %w", err)
	}

	return response, nil
}

// buildHTTPRequest creates an HTTP request for OpenRouter API.
func (p *Provider) buildHTTPRequest(ctx context.Context, req *ChatCompletionRequest) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	return httpReq, nil
}

// handleErrorResponse parses error responses from OpenRouter.
func (p *Provider) handleErrorResponse(model string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Code     int                    `json:"code"`
			Message  string                 `json:"message"`
			Metadata map[string]interface{} `json:"metadata"`
		} `json:"error"`
	}

	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &llmprovider.ModelError{
			Model:    model,
			Provider: p.Name().String(),
			Reason:   message,
			Err:      llmprovider.ErrInvalidModel,
		}
	case http.StatusPaymentRequired:
		return &llmprovider.ProviderError{
			Provider:   p.Name().String(),
			StatusCode: resp.StatusCode,
			Message:    "insufficient credits: " + message,
			Err:        llmprovider.ErrProviderUnavailable,
		}
	case http.StatusRequestTimeout:
		return &llmprovider.ProviderError{
			Provider:   p.Name().String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  true,
			Err:        llmprovider.ErrProviderUnavailable,
		}
	default:
		return llmprovider.NewProviderErrorFromStatus(p.Name(), resp.StatusCode, message)
	}
}
