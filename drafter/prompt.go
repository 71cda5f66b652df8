package drafter

import (
	"bytes"
	"text/template"
)

// ComplaintRequest is a validated complaint record. All fields are
// already rendered to text.
type ComplaintRequest struct {
	ComplaintType string
	Details       string
	OrderID       string
	ProductName   string
	SupplierName  string
}

// Field values are interpolated verbatim. text/template does no escaping,
// so the prompt carries exactly what the customer typed.
var promptTemplate = template.Must(template.New("prompt").Parse(`
You are a highly professional and empathetic Customer Support Email Drafter.
A customer has filed a complaint about an order. Your task is to draft a concise, internal-facing email to the customer care team.

**Complaint Context:**
- **Order ID:** {{.OrderID}}
- **Supplier:** {{.SupplierName}}
- **Product:** {{.ProductName}}
- **Complaint Reason:** {{.ComplaintType}}
- **Customer's Description:** "{{.Details}}"

**Instructions:**
1.  Create a clear and concise subject line that includes the Order ID and complaint type.
2.  Write the email body. Start by acknowledging the complaint.
3.  Summarize the issue clearly for the customer care team.
4.  Maintain a professional and urgent tone.
5.  Suggest the next step is for the team to investigate and contact the customer.
`))

// BuildPrompt renders the drafting instruction for a complaint.
func BuildPrompt(req ComplaintRequest) string {
	var buf bytes.Buffer
	// Executing a parsed template over a struct of strings cannot fail.
	_ = promptTemplate.Execute(&buf, req)
	return buf.String()
}
