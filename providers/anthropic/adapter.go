package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// convertToAnthropicMessages converts library messages to Anthropic SDK format.
func convertToAnthropicMessages(messages []llmprovider.Message) ([]anthropic.MessageParam, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	result := make([]anthropic.MessageParam, 0, len(messages))

	for i, msg := range messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Blocks))

		for j, block := range msg.Blocks {
			switch block.BlockType {
			case llmprovider.BlockTypeText:
				if block.TextContent == nil {
					return nil, fmt.Errorf("message %d, block %d: text block missing text_content", i, j)
				}
				blocks = append(blocks, anthropic.NewTextBlock(*block.TextContent))

			case llmprovider.BlockTypeToolUse:
				toolUseID, ok := block.Content["tool_use_id"].(string)
				if !ok || toolUseID == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_use block missing tool_use_id", i, j)
				}
				toolName, ok := block.GetToolName()
				if !ok || toolName == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_use block missing tool_name", i, j)
				}
				input, ok := block.GetToolInput()
				if !ok {
					return nil, fmt.Errorf("message %d, block %d: tool_use block missing input", i, j)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(toolUseID, input, toolName))

			default:
				return nil, fmt.Errorf("message %d, block %d: unsupported block type %q", i, j, block.BlockType)
			}
		}

		var message anthropic.MessageParam
		switch msg.Role {
		case llmprovider.RoleUser:
			message = anthropic.NewUserMessage(blocks...)
		case llmprovider.RoleAssistant:
			message = anthropic.NewAssistantMessage(blocks...)
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}

		result = append(result, message)
	}

	return result, nil
}

// convertAnthropicBlock converts a single Anthropic content block to library Block format.
// Returns nil for block types the library does not model (thinking, server tools).
func convertAnthropicBlock(content anthropic.ContentBlockUnion, sequence int) *llmprovider.Block {
	providerID := llmprovider.ProviderAnthropic.String()

	switch content.Type {
	case "text":
		text := content.Text
		return &llmprovider.Block{
			BlockType:   llmprovider.BlockTypeText,
			Sequence:    sequence,
			TextContent: &text,
			Provider:    &providerID,
		}

	case "tool_use":
		// Input stays raw so the structured payload reaches the caller untouched.
		return &llmprovider.Block{
			BlockType: llmprovider.BlockTypeToolUse,
			Sequence:  sequence,
			Content: map[string]interface{}{
				"tool_use_id": content.ID,
				"tool_name":   content.Name,
				"input":       json.RawMessage(content.Input),
			},
			Provider: &providerID,
		}

	default:
		return nil
	}
}

// convertFromAnthropicResponse converts an Anthropic response to library format.
func convertFromAnthropicResponse(msg *anthropic.Message) (*llmprovider.GenerateResponse, error) {
	if msg == nil {
		return nil, fmt.Errorf("anthropic returned an empty message")
	}

	blocks := make([]*llmprovider.Block, 0, len(msg.Content))
	for i, content := range msg.Content {
		if block := convertAnthropicBlock(content, i); block != nil {
			blocks = append(blocks, block)
		}
	}

	responseMetadata := map[string]interface{}{
		"message_id": msg.ID,
	}
	if msg.StopSequence != "" {
		responseMetadata["stop_sequence"] = msg.StopSequence
	}

	return &llmprovider.GenerateResponse{
		Blocks:           blocks,
		Model:            string(msg.Model),
		InputTokens:      int(msg.Usage.InputTokens),
		OutputTokens:     int(msg.Usage.OutputTokens),
		StopReason:       string(msg.StopReason),
		ResponseMetadata: responseMetadata,
	}, nil
}
