package llmprovider

import "encoding/json"

// Block type constants
const (
	BlockTypeText    = "text"
	BlockTypeToolUse = "tool_use"
)

// Block represents a content block in a request or response.
//
// The Content field stores block-type-specific structured data as a map:
// - text: empty (text in TextContent field)
// - tool_use: {"tool_use_id": "toolu_...", "tool_name": "...", "input": {...}}
type Block struct {
	// BlockType indicates the type of block
	// Values: "text", "tool_use"
	BlockType string `json:"block_type"`

	// Sequence indicates the position of this block in the turn (0-indexed)
	Sequence int `json:"sequence"`

	// TextContent contains the text for text blocks
	TextContent *string `json:"text_content,omitempty"`

	// Content contains type-specific structured data
	Content map[string]interface{} `json:"content,omitempty"`

	// Provider identifies which LLM provider generated this block
	Provider *string `json:"provider,omitempty"`

	// ProviderData stores the raw provider-specific response for this block
	// when the normalized form loses information.
	ProviderData json.RawMessage `json:"provider_data,omitempty"`
}

// IsToolUseBlock returns true if this is a tool_use block
func (b *Block) IsToolUseBlock() bool {
	return b.BlockType == BlockTypeToolUse
}

// GetToolName returns the tool_name from a tool_use block
func (b *Block) GetToolName() (string, bool) {
	if !b.IsToolUseBlock() {
		return "", false
	}
	name, ok := b.Content["tool_name"].(string)
	return name, ok
}

// GetToolInput returns the raw input of a tool_use block.
// Providers store either a json.RawMessage or an already-decoded map.
func (b *Block) GetToolInput() (json.RawMessage, bool) {
	if !b.IsToolUseBlock() {
		return nil, false
	}
	switch input := b.Content["input"].(type) {
	case json.RawMessage:
		return input, len(input) > 0
	case []byte:
		return json.RawMessage(input), len(input) > 0
	case nil:
		return nil, false
	default:
		raw, err := json.Marshal(input)
		if err != nil {
			return nil, false
		}
		return raw, true
	}
}

// IsFromProvider returns true if this block was created by the specified provider
func (b *Block) IsFromProvider(provider ProviderID) bool {
	return b.Provider != nil && *b.Provider == provider.String()
}
