package submitprofile

import "supplier-portal/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["supplierToken", "profile"],
  "properties": {
    "supplierToken": {"type": "string", "minLength": 1},
    "tokenType":     {"type": "string"},
    "profile":       {"type": "object"},
    "documentPath":  {"type": "string"}
  }
}`)

func GetInputSchema() *validation.Schema {
	return inputSchema
}
