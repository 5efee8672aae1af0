package sendinquiry

import (
	"context"

	"supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/common/validation"
	"supplier-portal/internal/models"
)

const MsgInquirySent = "Inquiry sent"

type Service struct {
	config    *Config
	logger    logger.Logger
	newClient ClientFactory
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		logger:    deps.Logger,
		newClient: deps.NewClient,
	}
}

// Execute validates the inquiry and posts it on behalf of the job's
// supplier. Field problems never reach the network.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if s.newClient == nil {
		return nil, errors.NewInvalidInputError("directory client not configured")
	}

	req := input.request()
	if fields := req.Validate(validation.ValidateEmail); len(fields) > 0 {
		return nil, errors.NewValidationFailedError("Inquiry is invalid", fields)
	}

	sess := session.New(session.NewMemoryStore())
	if err := sess.SaveLogin(ctx, &models.AuthResponse{
		Token:     input.SupplierToken,
		TokenType: input.TokenType,
	}); err != nil {
		return nil, errors.NewAuthTokenMissingError().WithCause(err)
	}

	resp, err := s.newClient(sess).SendInquiry(ctx, req)
	if err != nil {
		return nil, errors.AtMostOnce(err)
	}

	s.logger.Info("Inquiry sent", map[string]interface{}{
		"supplierId": req.SupplierID,
		"inquiryId":  resp.ID,
		"status":     resp.Status,
	})

	msg := resp.Message
	if msg == "" {
		msg = MsgInquirySent
	}
	return &Output{
		InquirySent: true,
		InquiryID:   string(resp.ID),
		Status:      resp.Status,
		Message:     msg,
	}, nil
}
