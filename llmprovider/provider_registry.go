package llmprovider

import (
	"fmt"
	"strings"
)

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderGoogle is Google's Gemini API
	ProviderGoogle ProviderID = "google"

	// ProviderAnthropic is Anthropic's Claude API
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderOpenRouter is OpenRouter's OpenAI-compatible proxy API
	ProviderOpenRouter ProviderID = "openrouter"

	// ProviderLorem is the mock Lorem provider for testing
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderGoogle, ProviderAnthropic, ProviderOpenRouter, ProviderLorem:
		return true
	default:
		return false
	}
}

// ParseProviderID converts a user-supplied name into a ProviderID.
// "gemini" is accepted as an alias for google.
func ParseProviderID(name string) (ProviderID, error) {
	id := ProviderID(strings.ToLower(strings.TrimSpace(name)))
	if id == "gemini" {
		id = ProviderGoogle
	}
	if !id.IsValid() {
		return "", fmt.Errorf("%w: %q (valid: google, anthropic, openrouter, lorem)", ErrUnknownProvider, name)
	}
	return id, nil
}
