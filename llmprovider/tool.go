package llmprovider

import (
	"errors"
	"fmt"
)

// FunctionDetails represents the function definition within a tool (OpenAI format).
type FunctionDetails struct {
	Name        string                 `json:"name"`                  // Function name (required)
	Description string                 `json:"description,omitempty"` // What the function does
	Parameters  map[string]interface{} `json:"parameters"`            // JSON Schema for parameters
}

// Tool represents a function tool (OpenAI universal format).
//   - Anthropic: Flatten and rename (parameters → input_schema)
type Tool struct {
	Type     string          `json:"type"`     // Always "function" for function tools
	Function FunctionDetails `json:"function"` // Function definition
}

// Validate checks if the Tool is properly configured
func (t *Tool) Validate() error {
	if t.Type != "function" {
		return fmt.Errorf("unsupported tool type: %q (only 'function' is supported)", t.Type)
	}

	if t.Function.Name == "" {
		return errors.New("function name is required")
	}

	if err := validateObjectSchema(t.Function.Parameters); err != nil {
		return fmt.Errorf("function parameters: %w", err)
	}

	return nil
}

// NewCustomTool creates a custom function tool (OpenAI format).
func NewCustomTool(name string, description string, parameters map[string]interface{}) (*Tool, error) {
	if description == "" {
		return nil, errors.New("tool description is required")
	}

	tool := &Tool{
		Type: "function",
		Function: FunctionDetails{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}

	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create custom tool: %w", err)
	}

	return tool, nil
}
