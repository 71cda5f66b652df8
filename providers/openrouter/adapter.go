package openrouter

import (
	"encoding/json"
	"fmt"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// convertToOpenRouterMessages converts library messages to OpenRouter format.
func convertToOpenRouterMessages(messages []llmprovider.Message) ([]Message, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	result := make([]Message, 0, len(messages))

	for i, msg := range messages {
		if msg.Role != llmprovider.RoleUser && msg.Role != llmprovider.RoleAssistant {
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}
		for j, block := range msg.Blocks {
			if block.BlockType != llmprovider.BlockTypeText {
				return nil, fmt.Errorf("message %d, block %d: unsupported block type %q", i, j, block.BlockType)
			}
			if block.TextContent == nil {
				return nil, fmt.Errorf("message %d, block %d: text block missing text_content", i, j)
			}
		}

		text := msg.Text()
		result = append(result, Message{Role: msg.Role, Content: &text})
	}

	return result, nil
}

// convertFromChatCompletionResponse converts an OpenRouter response to library format.
func convertFromChatCompletionResponse(resp *ChatCompletionResponse) (*llmprovider.GenerateResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]
	providerID := llmprovider.ProviderOpenRouter.String()
	blocks := []*llmprovider.Block{}

	if choice.Message.Content != nil && *choice.Message.Content != "" {
		text := *choice.Message.Content
		blocks = append(blocks, &llmprovider.Block{
			BlockType:   llmprovider.BlockTypeText,
			Sequence:    len(blocks),
			TextContent: &text,
			Provider:    &providerID,
		})
	}

	for _, call := range choice.Message.ToolCalls {
		if !json.Valid([]byte(call.Function.Arguments)) {
			return nil, fmt.Errorf("tool call %s has invalid arguments", call.ID)
		}
		blocks = append(blocks, &llmprovider.Block{
			BlockType: llmprovider.BlockTypeToolUse,
			Sequence:  len(blocks),
			Content: map[string]interface{}{
				"tool_use_id": call.ID,
				"tool_name":   call.Function.Name,
				"input":       json.RawMessage(call.Function.Arguments),
			},
			Provider: &providerID,
		})
	}

	stopReason := "end_turn"
	if choice.FinishReason != nil {
		stopReason = mapFinishReason(*choice.FinishReason)
	}

	return &llmprovider.GenerateResponse{
		Blocks:       blocks,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		StopReason:   stopReason,
		ResponseMetadata: map[string]interface{}{
			"id": resp.ID,
		},
	}, nil
}

// mapFinishReason maps OpenAI finish reasons onto the library's stop reasons.
func mapFinishReason(reason string) string {
	switch reason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	case "tool_calls":
		return "tool_use"
	default:
		return reason
	}
}
