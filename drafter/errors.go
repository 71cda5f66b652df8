package drafter

import (
	"fmt"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// ConfigurationError means the generation client could not be built.
// The server keeps it and answers every draft request with "not configured".
type ConfigurationError struct {
	Provider llmprovider.ProviderID
	Reason   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	msg := "LLM client configuration"
	if e.Provider != "" {
		msg += fmt.Sprintf(" (%s)", e.Provider)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// GenerationError wraps any failure of a single draft generation:
// transport, auth, provider, or a response that is not a valid EmailDraft.
type GenerationError struct {
	Provider llmprovider.ProviderID
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s model %s: %v", e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
