package gemini

import (
	"fmt"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// convertToGeminiContents converts library messages to Gemini contents.
// Gemini names the assistant role "model".
func convertToGeminiContents(messages []llmprovider.Message) ([]Content, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	contents := make([]Content, 0, len(messages))
	for i, msg := range messages {
		var role string
		switch msg.Role {
		case llmprovider.RoleUser:
			role = "user"
		case llmprovider.RoleAssistant:
			role = "model"
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}

		parts := make([]Part, 0, len(msg.Blocks))
		for j, block := range msg.Blocks {
			if block.BlockType != llmprovider.BlockTypeText || block.TextContent == nil {
				return nil, fmt.Errorf("message %d, block %d: only text blocks are supported", i, j)
			}
			parts = append(parts, Part{Text: *block.TextContent})
		}

		contents = append(contents, Content{Role: role, Parts: parts})
	}

	return contents, nil
}

// convertFromGenerateContentResponse converts the first candidate to library format.
func convertFromGenerateContentResponse(model string, resp *GenerateContentResponse) (*llmprovider.GenerateResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, &llmprovider.ProviderError{
			Provider: llmprovider.ProviderGoogle.String(),
			Message:  "empty response from Gemini (no candidates)",
			Err:      llmprovider.ErrProviderUnavailable,
		}
	}

	candidate := resp.Candidates[0]
	providerID := llmprovider.ProviderGoogle.String()

	blocks := make([]*llmprovider.Block, 0, len(candidate.Content.Parts))
	for i, part := range candidate.Content.Parts {
		text := part.Text
		blocks = append(blocks, &llmprovider.Block{
			BlockType:   llmprovider.BlockTypeText,
			Sequence:    i,
			TextContent: &text,
			Provider:    &providerID,
		})
	}

	result := &llmprovider.GenerateResponse{
		Blocks:     blocks,
		Model:      model,
		StopReason: mapFinishReason(candidate.FinishReason),
		ResponseMetadata: map[string]interface{}{
			"finish_reason": candidate.FinishReason,
		},
	}
	if resp.ModelVersion != "" {
		result.Model = resp.ModelVersion
	}
	if resp.ResponseID != "" {
		result.ResponseMetadata["response_id"] = resp.ResponseID
	}
	if resp.UsageMetadata != nil {
		result.InputTokens = resp.UsageMetadata.PromptTokenCount
		result.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	}

	return result, nil
}

// mapFinishReason maps Gemini finish reasons onto the library's stop reasons.
func mapFinishReason(reason string) string {
	switch reason {
	case "STOP", "":
		return "end_turn"
	case "MAX_TOKENS":
		return "max_tokens"
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT":
		return "content_filter"
	default:
		return reason
	}
}
