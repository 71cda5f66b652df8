package gemini

import "strings"

// Keys of the OpenAPI schema subset Gemini accepts in responseSchema.
var supportedSchemaKeys = map[string]bool{
	"type":             true,
	"format":           true,
	"description":      true,
	"nullable":         true,
	"enum":             true,
	"properties":       true,
	"required":         true,
	"items":            true,
	"minItems":         true,
	"maxItems":         true,
	"propertyOrdering": true,
}

// convertSchema rewrites a JSON schema into Gemini's dialect: type names are
// upper-cased and unsupported keywords (additionalProperties, $schema, ...)
// are dropped.
func convertSchema(schema map[string]interface{}) map[string]interface{} {
	if schema == nil {
		return nil
	}

	out := make(map[string]interface{}, len(schema))
	for key, value := range schema {
		if !supportedSchemaKeys[key] {
			continue
		}

		switch key {
		case "type":
			if s, ok := value.(string); ok {
				out[key] = strings.ToUpper(s)
			}
		case "properties":
			props, ok := value.(map[string]interface{})
			if !ok {
				continue
			}
			converted := make(map[string]interface{}, len(props))
			for name, prop := range props {
				if propSchema, ok := prop.(map[string]interface{}); ok {
					converted[name] = convertSchema(propSchema)
				}
			}
			out[key] = converted
		case "items":
			if itemSchema, ok := value.(map[string]interface{}); ok {
				out[key] = convertSchema(itemSchema)
			}
		default:
			out[key] = value
		}
	}

	return out
}
