package drafter

import (
	"time"

	"github.com/haowjy/complaint-mailer/llmprovider"
	"github.com/haowjy/complaint-mailer/providers/anthropic"
	"github.com/haowjy/complaint-mailer/providers/gemini"
	"github.com/haowjy/complaint-mailer/providers/lorem"
	"github.com/haowjy/complaint-mailer/providers/openrouter"
)

// ProviderOptions are the transport settings shared by all providers.
type ProviderOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// MockDelay is the simulated latency of the lorem provider.
	MockDelay time.Duration
}

// NewProvider builds the provider implementation for id.
// A missing credential returns llmprovider.ErrInvalidAPIKey.
func NewProvider(id llmprovider.ProviderID, opts ProviderOptions) (llmprovider.Provider, error) {
	switch id {
	case llmprovider.ProviderGoogle:
		p, err := gemini.NewProvider(opts.APIKey, gemini.Options{BaseURL: opts.BaseURL, Timeout: opts.Timeout})
		if err != nil {
			return nil, err
		}
		return p, nil
	case llmprovider.ProviderAnthropic:
		p, err := anthropic.NewProvider(opts.APIKey, anthropic.Options{BaseURL: opts.BaseURL, Timeout: opts.Timeout})
		if err != nil {
			return nil, err
		}
		return p, nil
	case llmprovider.ProviderOpenRouter:
		p, err := openrouter.NewProvider(opts.APIKey, openrouter.Options{BaseURL: opts.BaseURL, Timeout: opts.Timeout})
		if err != nil {
			return nil, err
		}
		return p, nil
	case llmprovider.ProviderLorem:
		return lorem.NewProvider(lorem.Options{Delay: opts.MockDelay}), nil
	default:
		return nil, llmprovider.ErrUnknownProvider
	}
}
