package sendinquiry

import "supplier-portal/internal/common/validation"

// Field rules live in models.InquiryRequest.Validate; the schema only
// checks shape.
var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["supplierToken", "supplierId", "name", "email", "subject", "message"],
  "properties": {
    "supplierToken": {"type": "string", "minLength": 1},
    "tokenType":     {"type": "string"},
    "supplierId":    {"type": ["string", "number"]},
    "name":          {"type": "string"},
    "email":         {"type": "string"},
    "phone":         {"type": "string"},
    "subject":       {"type": "string"},
    "message":       {"type": "string"}
  }
}`)

func GetInputSchema() *validation.Schema {
	return inputSchema
}
