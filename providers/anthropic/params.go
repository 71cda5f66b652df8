package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

const defaultMaxTokens = 4096

// buildMessageParams constructs Anthropic API parameters from a GenerateRequest.
func buildMessageParams(req *llmprovider.GenerateRequest) (anthropic.MessageNewParams, error) {
	messages, err := convertToAnthropicMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	params := req.Params
	if params == nil {
		params = &llmprovider.RequestParams{}
	}
	if err := llmprovider.ValidateRequestParams(params); err != nil {
		return anthropic.MessageNewParams{}, err
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: int64(params.GetMaxTokens(defaultMaxTokens)),
	}

	// Anthropic accepts 0.0-1.0
	if params.Temperature != nil {
		temp := *params.Temperature
		if temp > 1.0 {
			temp = 1.0
		}
		apiParams.Temperature = anthropic.Float(temp)
	}

	if params.TopP != nil {
		apiParams.TopP = anthropic.Float(*params.TopP)
	}

	// Structured output: expose the schema as the only tool and force the
	// model to call it. The tool input is the structured object.
	if params.WantsJSONSchema() {
		tool, err := params.ResponseFormat.JSONSchema.AsTool()
		if err != nil {
			return anthropic.MessageNewParams{}, fmt.Errorf("response format: %w", err)
		}
		toolParam, err := convertCustomTool(tool)
		if err != nil {
			return anthropic.MessageNewParams{}, fmt.Errorf("response format: %w", err)
		}
		apiParams.Tools = []anthropic.ToolUnionParam{toolParam}
		apiParams.ToolChoice = anthropic.ToolChoiceParamOfTool(tool.Function.Name)
	}

	return apiParams, nil
}
