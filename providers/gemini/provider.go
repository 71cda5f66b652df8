// Package gemini implements llmprovider.Provider on top of the Gemini
// generateContent REST API.
//
// Structured output uses Gemini's native responseSchema support: the
// request sets responseMimeType "application/json" and the model is
// constrained to the converted schema.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Provider implements the llmprovider.Provider interface for Gemini models.
type Provider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// Options tunes the HTTP client.
type Options struct {
	// BaseURL overrides the API root (used by tests).
	BaseURL string

	// Timeout bounds a single request. Defaults to 60s.
	Timeout time.Duration
}

// NewProvider creates a new Gemini provider with the given API key.
func NewProvider(apiKey string, opts Options) (*Provider, error) {
	if apiKey == "" {
		return nil, llmprovider.ErrInvalidAPIKey
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
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
	return llmprovider.ProviderGoogle
}

// SupportsModel returns true for Gemini model names ("gemini-...").
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

// GenerateResponse calls models/{model}:generateContent.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &llmprovider.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Gemini (must start with 'gemini-')",
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	geminiReq, err := buildGenerateContentRequest(req)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, url.PathEscape(req.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &llmprovider.ProviderError{
			Provider:  p.Name().String(),
			Message:   fmt.Sprintf("gemini HTTP request failed: %v", err),
			Retryable: true,
			Err:       llmprovider.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(req.Model, resp.StatusCode, respBody)
	}

	var geminiResp GenerateContentResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Gemini occasionally reports errors inside a 200 body
	if geminiResp.Error != nil {
		return nil, p.handleErrorResponse(req.Model, geminiResp.Error.Code, respBody)
	}

	return convertFromGenerateContentResponse(req.Model, &geminiResp)
}

// handleErrorResponse maps a Gemini error body to library errors.
func (p *Provider) handleErrorResponse(model string, status int, body []byte) error {
	var errResp struct {
		Error *APIError `json:"error"`
	}

	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		if errResp.Error.Status != "" {
			message = errResp.Error.Status + ": " + message
		}
	}

	if status == http.StatusNotFound {
		return &llmprovider.ModelError{
			Model:    model,
			Provider: p.Name().String(),
			Reason:   message,
			Err:      llmprovider.ErrInvalidModel,
		}
	}
	return llmprovider.NewProviderErrorFromStatus(p.Name(), status, message)
}
