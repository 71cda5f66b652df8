package llmprovider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateResponse contains the LLM provider's response.
type GenerateResponse struct {
	// Blocks is the list of content blocks returned by the provider
	Blocks []*Block

	// Model is the model that was used (may differ from request if aliased)
	Model string

	// InputTokens is the number of tokens in the input
	InputTokens int

	// OutputTokens is the number of tokens in the output
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "end_turn", "max_tokens")
	StopReason string

	// ResponseMetadata contains provider-specific response data
	ResponseMetadata map[string]interface{}
}

// Text concatenates all text blocks in the response.
func (r *GenerateResponse) Text() string {
	var sb strings.Builder
	for _, block := range r.Blocks {
		if block.BlockType == BlockTypeText && block.TextContent != nil {
			sb.WriteString(*block.TextContent)
		}
	}
	return sb.String()
}

// StructuredOutput returns the JSON payload produced for a json_schema
// response format.
//
// Lookup order:
//  1. input of a tool_use block named after the schema (forced-tool providers)
//  2. input of the first tool_use block
//  3. the concatenated text blocks, with any markdown code fence removed
//
// The payload must be a JSON object, otherwise ErrSchemaMismatch is returned.
func (r *GenerateResponse) StructuredOutput(schemaName string) (json.RawMessage, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: empty response", ErrSchemaMismatch)
	}

	var firstToolInput json.RawMessage
	for _, block := range r.Blocks {
		input, ok := block.GetToolInput()
		if !ok {
			continue
		}
		if name, _ := block.GetToolName(); schemaName != "" && name == schemaName {
			return requireObject(input)
		}
		if firstToolInput == nil {
			firstToolInput = input
		}
	}
	if firstToolInput != nil {
		return requireObject(firstToolInput)
	}

	text := stripCodeFence(r.Text())
	if text == "" {
		return nil, fmt.Errorf("%w: response contained no structured content (stop reason %q)", ErrSchemaMismatch, r.StopReason)
	}
	return requireObject(json.RawMessage(text))
}

func requireObject(raw json.RawMessage) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return raw, nil
}

// stripCodeFence removes a surrounding ```json ... ``` fence some models emit
// even in JSON mode.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
