package drafter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// DefaultMaxTokens caps the draft length when Config.MaxTokens is zero.
const DefaultMaxTokens = 2048

// Generator produces an email draft from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*EmailDraft, error)
}

// Config describes the model endpoint. It is read once at startup.
type Config struct {
	Provider llmprovider.ProviderID
	APIKey   string

	// Model defaults to the provider's catalogue default when empty.
	Model string

	MaxTokens   int
	Temperature *float64
	TopP        *float64

	Timeout   time.Duration
	BaseURL   string
	MockDelay time.Duration
}

// Client is the Generator backed by an llmprovider.Provider.
// It is immutable after construction and safe for concurrent use.
type Client struct {
	provider llmprovider.Provider
	model    string
	params   *llmprovider.RequestParams
	warnings []string
}

var _ Generator = (*Client)(nil)

// NewClient builds the provider named by cfg and wraps it.
// Every failure is a *ConfigurationError.
func NewClient(cfg Config) (*Client, error) {
	provider, err := NewProvider(cfg.Provider, ProviderOptions{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		MockDelay: cfg.MockDelay,
	})
	if err != nil {
		reason := "cannot create provider"
		switch {
		case errors.Is(err, llmprovider.ErrInvalidAPIKey):
			reason = "API key is not set"
		case errors.Is(err, llmprovider.ErrUnknownProvider):
			reason = fmt.Sprintf("unknown provider %q", cfg.Provider)
		}
		return nil, &ConfigurationError{Provider: cfg.Provider, Reason: reason, Err: err}
	}

	return NewClientWithProvider(provider, cfg)
}

// NewClientWithProvider wraps an existing provider. Only the model and
// sampling fields of cfg are used.
func NewClientWithProvider(provider llmprovider.Provider, cfg Config) (*Client, error) {
	id := provider.Name()
	registry := llmprovider.GetCapabilityRegistry()

	model := cfg.Model
	if model == "" {
		defaultModel, err := registry.DefaultModel(id)
		if err != nil {
			return nil, &ConfigurationError{Provider: id, Reason: "no model configured", Err: err}
		}
		model = defaultModel
	}
	if !provider.SupportsModel(model) {
		return nil, &ConfigurationError{
			Provider: id,
			Reason:   fmt.Sprintf("model %q is not served by this provider", model),
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	format, err := llmprovider.NewJSONSchemaFormat(EmailDraftSchemaName, emailDraftDescription, EmailDraftSchema())
	if err != nil {
		return nil, &ConfigurationError{Provider: id, Reason: "invalid output schema", Err: err}
	}

	params := &llmprovider.RequestParams{
		MaxTokens:      &maxTokens,
		Temperature:    cfg.Temperature,
		TopP:           cfg.TopP,
		ResponseFormat: format,
	}
	if err := llmprovider.ValidateRequestParams(params); err != nil {
		return nil, &ConfigurationError{Provider: id, Reason: "invalid request parameters", Err: err}
	}

	return &Client{
		provider: provider,
		model:    model,
		params:   params,
		warnings: registry.ModelWarnings(id, model, maxTokens),
	}, nil
}

// Provider returns the backing provider's ID.
func (c *Client) Provider() llmprovider.ProviderID {
	return c.provider.Name()
}

// Model returns the resolved model identifier.
func (c *Client) Model() string {
	return c.model
}

// Warnings returns catalogue warnings found at construction time.
func (c *Client) Warnings() []string {
	return c.warnings
}

// Generate makes exactly one model call and decodes the structured answer.
// All failures are returned as *GenerationError.
func (c *Client) Generate(ctx context.Context, prompt string) (*EmailDraft, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, c.fail(fmt.Errorf("%w: empty prompt", llmprovider.ErrInvalidRequest))
	}

	resp, err := c.provider.GenerateResponse(ctx, &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{llmprovider.NewUserTextMessage(prompt)},
		Model:    c.model,
		Params:   c.params,
	})
	if err != nil {
		return nil, c.fail(err)
	}

	payload, err := resp.StructuredOutput(EmailDraftSchemaName)
	if err != nil {
		return nil, c.fail(err)
	}

	var draft EmailDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, c.fail(fmt.Errorf("%w: %v", llmprovider.ErrSchemaMismatch, err))
	}
	if strings.TrimSpace(draft.Subject) == "" || strings.TrimSpace(draft.Body) == "" {
		return nil, c.fail(fmt.Errorf("%w: draft is missing subject or body", llmprovider.ErrSchemaMismatch))
	}

	return &draft, nil
}

func (c *Client) fail(err error) *GenerationError {
	return &GenerationError{Provider: c.provider.Name(), Model: c.model, Err: err}
}
