package server

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/haowjy/complaint-mailer/drafter"
)

// ValidationError is a rejected request body. Message is returned to the
// caller as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	errNoJSONBody    = &ValidationError{Message: "Invalid request. No JSON body provided."}
	errMissingFields = &ValidationError{Message: "Missing required fields in request."}
)

// parseComplaint decodes a JSON object and checks that all five complaint
// fields are truthy: present, not null, not false, not zero, and not an
// empty string, array or object.
func parseComplaint(body []byte) (drafter.ComplaintRequest, *ValidationError) {
	if len(bytes.TrimSpace(body)) == 0 {
		return drafter.ComplaintRequest{}, errNoJSONBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return drafter.ComplaintRequest{}, errNoJSONBody
	}
	// Trailing garbage after the object.
	if dec.More() {
		return drafter.ComplaintRequest{}, errNoJSONBody
	}
	if len(data) == 0 {
		return drafter.ComplaintRequest{}, errNoJSONBody
	}

	fields := make([]string, 0, 5)
	for _, key := range []string{"complaintType", "details", "orderId", "productName", "supplierName"} {
		v, ok := data[key]
		if !ok || !truthy(v) {
			return drafter.ComplaintRequest{}, errMissingFields
		}
		fields = append(fields, asText(v))
	}

	return drafter.ComplaintRequest{
		ComplaintType: fields[0],
		Details:       fields[1],
		OrderID:       fields[2],
		ProductName:   fields[3],
		SupplierName:  fields[4],
	}, nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// asText renders a field value for the prompt. Strings pass through;
// anything else is written as compact JSON.
func asText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
