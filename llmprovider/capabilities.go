package llmprovider

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/models.yaml
var modelCatalogYAML []byte

// The catalogue is MODEL METADATA for defaults and warnings.
// It does NOT enforce validation - provider APIs are the source of truth.
// An unknown model is reported as a warning and the request still goes out.

// ModelCatalog is the full catalogue configuration.
type ModelCatalog struct {
	Version     string                        `yaml:"version"`
	LastUpdated string                        `yaml:"last_updated"`
	Providers   map[string]ProviderCapability `yaml:"providers"`
}

// ProviderCapability lists the models known for one provider.
type ProviderCapability struct {
	DefaultModel string                     `yaml:"default_model"`
	Models       map[string]ModelCapability `yaml:"models"`
}

// ModelCapability represents the capabilities of a specific model
type ModelCapability struct {
	ContextWindow   int `yaml:"context_window"`
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// StructuredOutput is "native" (schema-constrained decoding) or "tool" (forced tool call)
	StructuredOutput string `yaml:"structured_output"`
}

// CapabilityRegistry manages the model catalogue
type CapabilityRegistry struct {
	catalog *ModelCatalog
	mu      sync.RWMutex
}

var (
	globalRegistry     *CapabilityRegistry
	globalRegistryOnce sync.Once
)

// GetCapabilityRegistry returns the global capability registry (singleton)
func GetCapabilityRegistry() *CapabilityRegistry {
	globalRegistryOnce.Do(func() {
		registry, err := NewCapabilityRegistry(modelCatalogYAML)
		if err != nil {
			// The embedded catalogue is covered by tests; fall back to an empty one.
			registry = &CapabilityRegistry{catalog: &ModelCatalog{Providers: map[string]ProviderCapability{}}}
		}
		globalRegistry = registry
	})
	return globalRegistry
}

// NewCapabilityRegistry parses a YAML catalogue.
func NewCapabilityRegistry(data []byte) (*CapabilityRegistry, error) {
	var catalog ModelCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model catalogue: %w", err)
	}
	if catalog.Providers == nil {
		catalog.Providers = map[string]ProviderCapability{}
	}
	return &CapabilityRegistry{catalog: &catalog}, nil
}

// LoadCapabilitiesFromFile replaces the catalogue with the contents of a YAML file.
func (r *CapabilityRegistry) LoadCapabilitiesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model catalogue: %w", err)
	}

	loaded, err := NewCapabilityRegistry(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = loaded.catalog

	return nil
}

// DefaultModel returns the catalogue's default model for a provider.
func (r *CapabilityRegistry) DefaultModel(provider ProviderID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.catalog.Providers[provider.String()]
	if !ok || caps.DefaultModel == "" {
		return "", fmt.Errorf("no default model for provider: %s", provider)
	}
	return caps.DefaultModel, nil
}

// GetModelCapability returns capabilities for a specific model
func (r *CapabilityRegistry) GetModelCapability(provider ProviderID, model string) (*ModelCapability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.catalog.Providers[provider.String()]
	if !ok {
		return nil, fmt.Errorf("no capabilities found for provider: %s", provider)
	}

	modelCap, ok := caps.Models[model]
	if !ok {
		return nil, fmt.Errorf("model %s not found for provider %s", model, provider)
	}
	return &modelCap, nil
}

// SupportsModel checks if the catalogue lists a model for a provider
func (r *CapabilityRegistry) SupportsModel(provider ProviderID, model string) bool {
	_, err := r.GetModelCapability(provider, model)
	return err == nil
}

// ModelWarnings returns human-readable warnings about a model/token choice.
// Warnings are informational; callers log them and carry on.
func (r *CapabilityRegistry) ModelWarnings(provider ProviderID, model string, maxTokens int) []string {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return []string{fmt.Sprintf("model %s not found in %s catalogue (catalogue may be outdated)", model, provider)}
	}

	var warnings []string
	if modelCap.MaxOutputTokens > 0 && maxTokens > modelCap.MaxOutputTokens {
		warnings = append(warnings, fmt.Sprintf("max tokens %d exceeds %s output limit of %d", maxTokens, model, modelCap.MaxOutputTokens))
	}
	return warnings
}
