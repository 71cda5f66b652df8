package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/haowjy/complaint-mailer/llmprovider"
)

// convertCustomTool converts a function tool to Anthropic custom tool format.
// Converts OpenAI format (tool.Function.Parameters) → Anthropic format (input_schema).
func convertCustomTool(tool *llmprovider.Tool) (anthropic.ToolUnionParam, error) {
	if err := tool.Validate(); err != nil {
		return anthropic.ToolUnionParam{}, err
	}

	// Anthropic wants the properties object on its own; "required" is a direct
	// field and everything else (additionalProperties, ...) rides in ExtraFields.
	parameters := &llmprovider.JSONSchema{Schema: tool.Function.Parameters}
	schema := anthropic.ToolInputSchemaParam{
		Properties:  parameters.Properties(),
		Required:    parameters.Required(),
		ExtraFields: make(map[string]any),
	}

	for key, value := range tool.Function.Parameters {
		if key != "type" && key != "properties" && key != "required" {
			schema.ExtraFields[key] = value
		}
	}

	toolParam := anthropic.ToolUnionParamOfTool(schema, tool.Function.Name)
	if tool.Function.Description != "" {
		toolParam.OfTool.Description = anthropic.String(tool.Function.Description)
	}

	return toolParam, nil
}
