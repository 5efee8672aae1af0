// Package submission uploads the verification document and sends the
// aggregated profile in one PATCH. Every step is fail-fast and nothing is
// retried.
package submission

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/metrics"
	"supplier-portal/internal/common/supplierapi"
	"supplier-portal/internal/models"
)

const MsgSubmitted = "Profile submitted, pending verification"

// ErrAlreadySubmitting is returned while another Submit is in flight.
var ErrAlreadySubmitting = apperrors.NewSubmissionInProgressError()

// ProfileAPI is the subset of the directory client the pipeline uses.
type ProfileAPI interface {
	UploadDocument(ctx context.Context, doc *models.Document) (*models.UploadedDocument, error)
	UpdateProfile(ctx context.Context, payload models.ProfileUpdateData) (json.RawMessage, error)
}

// Outcome is what the supplier sees after a submission attempt. Message is
// always set; FieldErrors only for a rejected payload.
type Outcome struct {
	Submitted   bool
	Message     string
	FieldErrors models.FieldErrors
	Document    *models.UploadedDocument
	Response    json.RawMessage
}

type Pipeline struct {
	api        ProfileAPI
	logger     logger.Logger
	submitting atomic.Bool
}

func NewPipeline(api ProfileAPI, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Pipeline{api: api, logger: log}
}

// Submitting reports whether a submission is in flight.
func (p *Pipeline) Submitting() bool {
	return p.submitting.Load()
}

// Submit runs upload, required checks, payload build and the PATCH. On
// failure the returned Outcome carries the display message and err the
// underlying cause.
func (p *Pipeline) Submit(ctx context.Context, form *models.ProfileFormData) (*Outcome, error) {
	if !p.submitting.CompareAndSwap(false, true) {
		return &Outcome{Message: ErrAlreadySubmitting.Message}, ErrAlreadySubmitting
	}
	defer p.submitting.Store(false)

	start := time.Now()
	out, err := p.run(ctx, form)
	outcome := "submitted"
	if err != nil {
		outcome = outcomeLabel(err)
	}
	metrics.ProfileSubmissionsTotal.WithLabelValues(outcome).Inc()

	fields := map[string]interface{}{
		"outcome":  outcome,
		"duration": time.Since(start).String(),
	}
	if err != nil {
		p.logger.WithError(err).Warn("Profile submission failed", fields)
	} else {
		p.logger.Info("Profile submitted", fields)
	}
	return out, err
}

func (p *Pipeline) run(ctx context.Context, form *models.ProfileFormData) (*Outcome, error) {
	out := &Outcome{}

	if form.Document != nil {
		doc, err := p.api.UploadDocument(ctx, form.Document)
		if err != nil {
			if !apperrors.HasCode(err, apperrors.ErrCodeUploadFailed) {
				err = apperrors.NewUploadFailedError(form.Document.Name(), err)
			}
			out.Message = apperrors.Message(err)
			return out, err
		}
		out.Document = doc
		p.logger.Debug("Verification document uploaded", map[string]interface{}{
			"file": form.Document.Name(),
		})
	}

	if err := CheckRequired(form); err != nil {
		out.Message = apperrors.Message(err)
		return out, err
	}

	resp, err := p.api.UpdateProfile(ctx, BuildPayload(form))
	if err != nil {
		var ve *supplierapi.ValidationError
		if errors.As(err, &ve) && len(ve.Fields) > 0 {
			out.FieldErrors = ve.Fields
			out.Message = FormatValidationErrors(ve.Fields)
		} else {
			out.Message = apperrors.Message(err)
		}
		return out, err
	}

	out.Submitted = true
	out.Message = MsgSubmitted
	out.Response = resp
	return out, nil
}

func outcomeLabel(err error) string {
	switch apperrors.Normalize(err).Code {
	case apperrors.ErrCodeUploadFailed:
		return "upload_failed"
	case apperrors.ErrCodeSubmissionRejected:
		return "rejected"
	case apperrors.ErrCodeValidationFailed:
		return "invalid"
	case apperrors.ErrCodeSubmissionBusy:
		return "busy"
	default:
		return "failed"
	}
}
