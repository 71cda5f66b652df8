package gemini

import (
	"fmt"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// GenerateContentRequest is the body of models/{model}:generateContent.
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is one conversation turn.
type Content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// Part is a piece of content. Only text parts are used.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig carries sampling and output-format settings.
type GenerationConfig struct {
	MaxOutputTokens  *int                   `json:"maxOutputTokens,omitempty"`
	Temperature      *float64               `json:"temperature,omitempty"`
	TopP             *float64               `json:"topP,omitempty"`
	ResponseMimeType string                 `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
}

// GenerateContentResponse is the non-streaming response body.
type GenerateContentResponse struct {
	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
	ResponseID    string         `json:"responseId,omitempty"`
	Error         *APIError      `json:"error,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// UsageMetadata reports token counts.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// APIError is the Google API error envelope.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// buildGenerateContentRequest converts a GenerateRequest into Gemini's wire format.
func buildGenerateContentRequest(req *llmprovider.GenerateRequest) (*GenerateContentRequest, error) {
	params := req.Params
	if params == nil {
		params = &llmprovider.RequestParams{}
	}
	if err := llmprovider.ValidateRequestParams(params); err != nil {
		return nil, err
	}

	contents, err := convertToGeminiContents(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	geminiReq := &GenerateContentRequest{
		Contents: contents,
		GenerationConfig: &GenerationConfig{
			MaxOutputTokens: params.MaxTokens,
			Temperature:     params.Temperature,
			TopP:            params.TopP,
		},
	}

	if params.WantsJSONSchema() {
		geminiReq.GenerationConfig.ResponseMimeType = "application/json"
		geminiReq.GenerationConfig.ResponseSchema = convertSchema(params.ResponseFormat.JSONSchema.Schema)
	}

	return geminiReq, nil
}
