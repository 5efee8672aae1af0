package submitprofile

import (
	"context"

	"supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/models"
	"supplier-portal/internal/submission"
)

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

// Execute runs the submission pipeline for one draft under the job's own
// session. Failures carry the supplier-facing message.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if s.newClient == nil {
		return nil, errors.NewInvalidInputError("directory client not configured")
	}

	form, err := models.LoadDraft(input.Profile)
	if err != nil {
		return nil, err
	}
	if input.DocumentPath != "" {
		form.Document = &models.Document{Path: input.DocumentPath}
	}

	sess := session.New(session.NewMemoryStore())
	if err := sess.SaveLogin(ctx, &models.AuthResponse{
		Token:     input.SupplierToken,
		TokenType: input.TokenType,
	}); err != nil {
		return nil, errors.NewAuthTokenMissingError().WithCause(err)
	}

	s.logger.Info("Submitting supplier profile", map[string]interface{}{
		"businessName": form.BusinessName,
		"hasDocument":  form.Document != nil,
	})

	pipeline := submission.NewPipeline(s.newClient(sess), s.logger)
	out, err := pipeline.Submit(ctx, form)
	if err != nil {
		return nil, withMessage(err, out)
	}

	result := &Output{
		Submitted: out.Submitted,
		Message:   out.Message,
	}
	if out.Document != nil {
		result.DocumentID = string(out.Document.ID)
	}
	return result, nil
}

// withMessage returns a copy of err's standard form carrying the message
// the supplier would have seen. The upload and the PATCH are never repeated,
// so the copy is never retryable.
func withMessage(err error, out *submission.Outcome) error {
	std := errors.AtMostOnce(err)
	if out != nil && out.Message != "" {
		std.Message = out.Message
	}
	if out != nil && len(out.FieldErrors) > 0 {
		std.Metadata = map[string]interface{}{"fields": out.FieldErrors}
	}
	return std
}
