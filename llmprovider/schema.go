package llmprovider

import (
	"errors"
	"fmt"
	"sort"
)

// Response format types
const (
	ResponseFormatText       = "text"
	ResponseFormatJSONSchema = "json_schema"
)

// ResponseFormat specifies the format for structured outputs
type ResponseFormat struct {
	Type       string      `json:"type"`                  // "text" or "json_schema"
	JSONSchema *JSONSchema `json:"json_schema,omitempty"` // Schema for structured output
}

// JSONSchema is a named JSON schema describing the expected output object.
// The layout follows the OpenAI response_format convention, which every
// provider adapter converts from.
type JSONSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Schema      map[string]interface{} `json:"schema"`
	Strict      bool                   `json:"strict,omitempty"`
}

// NewJSONSchemaFormat creates a json_schema response format.
//
// Example schema:
//
//	map[string]interface{}{
//	  "type": "object",
//	  "properties": map[string]interface{}{
//	    "subject": map[string]interface{}{"type": "string"},
//	  },
//	  "required": []string{"subject"},
//	}
func NewJSONSchemaFormat(name, description string, schema map[string]interface{}) (*ResponseFormat, error) {
	rf := &ResponseFormat{
		Type: ResponseFormatJSONSchema,
		JSONSchema: &JSONSchema{
			Name:        name,
			Description: description,
			Schema:      schema,
			Strict:      true,
		},
	}

	if err := rf.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create response format: %w", err)
	}

	return rf, nil
}

// Validate checks if the ResponseFormat is properly configured
func (rf *ResponseFormat) Validate() error {
	switch rf.Type {
	case ResponseFormatText:
		return nil
	case ResponseFormatJSONSchema:
	default:
		return &ValidationError{
			Field:  "response_format.type",
			Value:  rf.Type,
			Reason: "must be 'text' or 'json_schema'",
			Err:    ErrInvalidRequest,
		}
	}

	if rf.JSONSchema == nil {
		return &ValidationError{
			Field:  "response_format.json_schema",
			Reason: "schema is required for json_schema format",
			Err:    ErrInvalidRequest,
		}
	}

	if rf.JSONSchema.Name == "" {
		return &ValidationError{
			Field:  "response_format.json_schema.name",
			Reason: "schema name is required",
			Err:    ErrInvalidRequest,
		}
	}

	if err := validateObjectSchema(rf.JSONSchema.Schema); err != nil {
		return &ValidationError{
			Field:  "response_format.json_schema.schema",
			Value:  rf.JSONSchema.Name,
			Reason: err.Error(),
			Err:    ErrInvalidRequest,
		}
	}

	return nil
}

func validateObjectSchema(schema map[string]interface{}) error {
	if schema == nil {
		return errors.New("schema is required")
	}
	if schemaType, ok := schema["type"].(string); !ok || schemaType != "object" {
		return errors.New("schema must have type 'object'")
	}
	props, ok := schema["properties"].(map[string]interface{})
	if !ok || len(props) == 0 {
		return errors.New("schema must declare at least one property")
	}
	return nil
}

// Properties returns the schema's property definitions.
func (s *JSONSchema) Properties() map[string]interface{} {
	props, _ := s.Schema["properties"].(map[string]interface{})
	return props
}

// PropertyNames returns the property names in sorted order.
func (s *JSONSchema) PropertyNames() []string {
	props := s.Properties()
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Required returns the required property names.
// Accepts both []string and []interface{} (the latter appears after a JSON round trip).
func (s *JSONSchema) Required() []string {
	switch required := s.Schema["required"].(type) {
	case []string:
		return required
	case []interface{}:
		out := make([]string, 0, len(required))
		for _, v := range required {
			if str, ok := v.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// AsTool converts the schema into a function tool whose input is the
// structured output. Used by providers that implement structured output
// through forced tool calls.
func (s *JSONSchema) AsTool() (*Tool, error) {
	description := s.Description
	if description == "" {
		description = fmt.Sprintf("Return the %s object.", s.Name)
	}
	return NewCustomTool(s.Name, description, s.Schema)
}
