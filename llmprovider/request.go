package llmprovider

import "strings"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerateRequest contains the parameters for an LLM generation request.
type GenerateRequest struct {
	// Messages contains the conversation history.
	// Each message has a Role (user/assistant) and Blocks.
	Messages []Message

	// Model is the model identifier (e.g., "gemini-2.5-flash")
	Model string

	// Params contains all request parameters (temperature, max_tokens, response format, etc.)
	// Provider adapters extract what they support from this unified struct.
	Params *RequestParams
}

// Message represents a single message in the conversation.
type Message struct {
	// Role is either "user" or "assistant"
	Role string

	// Blocks is the list of content blocks for this message
	Blocks []*Block
}

// NewUserTextMessage builds a single-block user message.
func NewUserTextMessage(text string) Message {
	return Message{
		Role: RoleUser,
		Blocks: []*Block{
			{
				BlockType:   BlockTypeText,
				Sequence:    0,
				TextContent: &text,
			},
		},
	}
}

// Text concatenates the text blocks of a message.
func (m Message) Text() string {
	var sb strings.Builder
	for _, block := range m.Blocks {
		if block.BlockType == BlockTypeText && block.TextContent != nil {
			sb.WriteString(*block.TextContent)
		}
	}
	return sb.String()
}
