package openrouter

import (
	"fmt"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// ChatCompletionRequest represents an OpenRouter chat completion request.
// OpenRouter uses OpenAI-compatible format.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat is the OpenAI response_format object.
type ResponseFormat struct {
	Type       string      `json:"type"` // "json_schema"
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema is the named schema inside response_format.
type JSONSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Strict      bool                   `json:"strict"`
	Schema      map[string]interface{} `json:"schema"`
}

// Message represents a message in the conversation.
type Message struct {
	Role      string     `json:"role"` // "system", "user", "assistant"
	Content   *string    `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall represents a function call in assistant messages.
// Some upstream models answer structured requests with a tool call instead of content.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall represents the function details of a tool call.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ChatCompletionResponse represents an OpenRouter chat completion response (non-streaming).
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"` // "chat.completion"
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a completion choice in the response.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
}

// Usage represents token usage in the response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// buildChatCompletionRequest constructs an OpenRouter API request from a GenerateRequest.
func buildChatCompletionRequest(req *llmprovider.GenerateRequest) (*ChatCompletionRequest, error) {
	params := req.Params
	if params == nil {
		params = &llmprovider.RequestParams{}
	}
	if err := llmprovider.ValidateRequestParams(params); err != nil {
		return nil, err
	}

	messages, err := convertToOpenRouterMessages(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	openrouterReq := &ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		Stream:      false,
	}

	if params.WantsJSONSchema() {
		schema := params.ResponseFormat.JSONSchema
		openrouterReq.ResponseFormat = &ResponseFormat{
			Type: llmprovider.ResponseFormatJSONSchema,
			JSONSchema: &JSONSchema{
				Name:        schema.Name,
				Description: schema.Description,
				Strict:      schema.Strict,
				Schema:      schema.Schema,
			},
		}
	}

	return openrouterReq, nil
}
