package sendinquiry

import (
	"context"

	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/supplierapi"
	"supplier-portal/internal/models"
)

type Input struct {
	SupplierToken string `json:"supplierToken"`
	TokenType     string `json:"tokenType,omitempty"`
	SupplierID    string `json:"supplierId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
}

func (in *Input) request() models.InquiryRequest {
	return models.InquiryRequest{
		SupplierID: in.SupplierID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Subject:    in.Subject,
		Message:    in.Message,
	}
}

type Output struct {
	InquirySent bool   `json:"inquirySent"`
	InquiryID   string `json:"inquiryId,omitempty"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message"`
}

// InquiryAPI is the directory call this worker makes.
type InquiryAPI interface {
	SendInquiry(ctx context.Context, req models.InquiryRequest) (*models.InquiryResponse, error)
}

type ClientFactory func(sess supplierapi.SessionStore) InquiryAPI

type ServiceDependencies struct {
	Logger    logger.Logger
	NewClient ClientFactory
}
