package submitprofile

import (
	"encoding/json"

	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/supplierapi"
	"supplier-portal/internal/submission"
)

type Input struct {
	SupplierToken string          `json:"supplierToken"`
	TokenType     string          `json:"tokenType,omitempty"`
	Profile       json.RawMessage `json:"profile"`
	DocumentPath  string          `json:"documentPath,omitempty"`
}

type Output struct {
	Submitted  bool   `json:"submitted"`
	Message    string `json:"message"`
	DocumentID string `json:"documentId,omitempty"`
}

// ClientFactory builds a directory client bound to one job's session.
type ClientFactory func(sess supplierapi.SessionStore) submission.ProfileAPI

type ServiceDependencies struct {
	Logger    logger.Logger
	NewClient ClientFactory
}
