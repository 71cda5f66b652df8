package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// Provider implements the llmprovider.Provider interface for Anthropic (Claude) models.
type Provider struct {
	client *anthropic.Client
}

// Options tunes the underlying SDK client.
type Options struct {
	// BaseURL overrides the API endpoint (used by tests).
	BaseURL string

	// Timeout bounds a single request. Zero leaves the SDK default.
	Timeout time.Duration
}

// NewProvider creates a new Anthropic provider with the given API key.
//
// SDK retries are disabled: a failed draft is reported to the caller
// instead of being silently resent.
func NewProvider(apiKey string, opts Options) (*Provider, error) {
	if apiKey == "" {
		return nil, llmprovider.ErrInvalidAPIKey
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(opts.Timeout))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Provider{
		client: &client,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmprovider.ProviderID {
	return llmprovider.ProviderAnthropic
}

// SupportsModel returns true if this provider supports the given model.
// Anthropic models start with "claude-"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "claude-")
}

// GenerateResponse generates a response from Claude.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &llmprovider.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Anthropic (must start with 'claude-')",
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	apiParams, err := buildMessageParams(req)
	if err != nil {
		return nil, err
	}

	message, err := p.client.Messages.New(ctx, apiParams)
	if err != nil {
		return nil, convertAPIError(err)
	}

	return convertFromAnthropicResponse(message)
}

// convertAPIError maps SDK errors onto the library's error taxonomy.
func convertAPIError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return llmprovider.NewProviderErrorFromStatus(llmprovider.ProviderAnthropic, apiErr.StatusCode, apiErr.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &llmprovider.ProviderError{
		Provider:  llmprovider.ProviderAnthropic.String(),
		Message:   fmt.Sprintf("anthropic API call failed: %v", err),
		Retryable: true,
		Err:       llmprovider.ErrProviderUnavailable,
	}
}
