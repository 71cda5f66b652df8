// Package drafter turns complaint records into professional email drafts
// through a hosted language model with structured output.
package drafter

// EmailDraftSchemaName names the structured output schema. Forced-tool
// providers use it as the tool name.
const EmailDraftSchemaName = "EmailDraft"

const emailDraftDescription = "A structured representation of a professional email draft."

// EmailDraft is the structured result of a generation.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailDraftSchema returns the JSON schema the model must answer with.
func EmailDraftSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": emailDraftDescription,
		"properties": map[string]interface{}{
			"subject": map[string]interface{}{
				"type":        "string",
				"description": "A clear and concise subject line for the email.",
			},
			"body": map[string]interface{}{
				"type":        "string",
				"description": "The full body content of the professionally drafted email.",
			},
		},
		"required":             []string{"subject", "body"},
		"additionalProperties": false,
	}
}
