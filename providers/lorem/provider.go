package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// Provider is a mock LLM provider that generates lorem ipsum text.
// Used for testing and development without requiring real API keys.
//
// Model names select behaviour:
//   - lorem-fast, lorem-slow: succeed after ModelDelay(model) unless
//     Options.Delay overrides it
//   - lorem-error: always fails with a retryable provider error
type Provider struct {
	mu        sync.Mutex // guards generator
	generator *loremgen.Lorem
	delay     time.Duration
}

// Options configures the mock.
type Options struct {
	// Delay overrides the per-model latency. Zero uses ModelDelay,
	// a negative value answers immediately.
	Delay time.Duration
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider(opts Options) *Provider {
	return &Provider{
		generator: loremgen.New(),
		delay:     opts.Delay,
	}
}

// ModelDelay returns the latency a model name suggests.
// - lorem-slow: 3s
// - lorem-fast: 200ms
// - default: 1s
func ModelDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 3 * time.Second
	}
	if strings.Contains(model, "fast") {
		return 200 * time.Millisecond
	}
	return time.Second
}

// Name returns the provider identifier.
func (p *Provider) Name() llmprovider.ProviderID {
	return llmprovider.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// GenerateResponse generates a complete lorem ipsum response.
// With a json_schema response format the text is a JSON object whose
// properties are filled from the schema.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &llmprovider.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	params := req.Params
	if params == nil {
		params = &llmprovider.RequestParams{}
	}
	if err := llmprovider.ValidateRequestParams(params); err != nil {
		return nil, err
	}

	delay := p.delay
	if delay == 0 {
		delay = ModelDelay(req.Model)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if strings.Contains(req.Model, "error") {
		return nil, llmprovider.NewProviderErrorFromStatus(p.Name(), 503, "simulated provider outage")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var text string
	if params.WantsJSONSchema() {
		payload, err := json.Marshal(p.fillSchema(params.ResponseFormat.JSONSchema.Schema))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal mock output: %w", err)
		}
		text = string(payload)
	} else {
		// Estimate: 1 token ≈ 4 characters
		text = p.generateText(params.GetMaxTokens(256) * 4)
	}

	providerID := p.Name().String()
	return &llmprovider.GenerateResponse{
		Blocks: []*llmprovider.Block{
			{
				BlockType:   llmprovider.BlockTypeText,
				TextContent: &text,
				Provider:    &providerID,
			},
		},
		Model:        req.Model,
		InputTokens:  p.estimateTokens(req.Messages),
		OutputTokens: len(strings.Fields(text)), // Word count as proxy
		StopReason:   "end_turn",
		ResponseMetadata: map[string]interface{}{
			"mock":       true,
			"provider":   "lorem",
			"message_id": uuid.NewString(),
		},
	}, nil
}

// fillSchema generates a value for every property of an object schema.
func (p *Provider) fillSchema(schema map[string]interface{}) map[string]interface{} {
	props, _ := schema["properties"].(map[string]interface{})
	out := make(map[string]interface{}, len(props))
	for name, raw := range props {
		prop, _ := raw.(map[string]interface{})
		out[name] = p.fillValue(name, prop)
	}
	return out
}

func (p *Provider) fillValue(name string, prop map[string]interface{}) interface{} {
	propType, _ := prop["type"].(string)
	switch propType {
	case "object":
		return p.fillSchema(prop)
	case "array":
		item, _ := prop["items"].(map[string]interface{})
		return []interface{}{p.fillValue(name, item), p.fillValue(name, item)}
	case "integer", "number":
		return len(name)
	case "boolean":
		return true
	default:
		// Short fields read like headings, everything else like prose.
		lower := strings.ToLower(name)
		if strings.Contains(lower, "subject") || strings.Contains(lower, "title") || strings.Contains(lower, "name") {
			return p.generator.Sentence(4, 8)
		}
		return p.generateText(400)
	}
}

// generateText generates lorem ipsum text with approximately targetChars characters.
func (p *Provider) generateText(targetChars int) string {
	var sb strings.Builder
	for sb.Len() < targetChars {
		sb.WriteString(p.generator.Paragraph(3, 5))
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// estimateTokens estimates the token count for a list of messages.
// Uses word count as a rough approximation.
func (p *Provider) estimateTokens(messages []llmprovider.Message) int {
	totalWords := 0
	for _, msg := range messages {
		totalWords += len(strings.Fields(msg.Text()))
	}
	return totalWords
}
