package submission

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/supplierapi"
	"supplier-portal/internal/models"
)

type MockProfileAPI struct {
	mock.Mock
}

func (m *MockProfileAPI) UploadDocument(ctx context.Context, doc *models.Document) (*models.UploadedDocument, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadedDocument), args.Error(1)
}

func (m *MockProfileAPI) UpdateProfile(ctx context.Context, payload models.ProfileUpdateData) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func completeForm() *models.ProfileFormData {
	f := models.NewProfileFormData()
	f.BusinessName = "Acme"
	f.BusinessType = "Supplier"
	f.Category = "Electronics"
	f.Categories = []string{"Electronics"}
	f.ProductKeywords = []string{"wholesale"}
	f.MainPhone = "512345678"
	f.Address = "Riyadh"
	f.Services = []string{"Delivery"}
	f.TargetCustomers = []string{"Retailers", "Contractors"}
	return f
}

func newTestPipeline(t *testing.T) (*Pipeline, *MockProfileAPI) {
	api := &MockProfileAPI{}
	return NewPipeline(api, logger.NewTestLogger(t)), api
}

func TestSubmit_Success(t *testing.T) {
	p, api := newTestPipeline(t)
	api.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(d models.ProfileUpdateData) bool {
		return d.BusinessType == "supplier" && d.WhoDoYouServe == "Retailers, Contractors"
	})).Return(json.RawMessage(`{"success":true}`), nil).Once()

	out, err := p.Submit(context.Background(), completeForm())
	require.NoError(t, err)
	assert.True(t, out.Submitted)
	assert.Equal(t, MsgSubmitted, out.Message)
	api.AssertExpectations(t)
	api.AssertNotCalled(t, "UploadDocument", mock.Anything, mock.Anything)
	assert.False(t, p.Submitting())
}

func TestSubmit_UploadsDocumentFirst(t *testing.T) {
	p, api := newTestPipeline(t)
	form := completeForm()
	form.Document = &models.Document{FileName: "cr.pdf", Content: []byte("pdf")}

	var order []string
	api.On("UploadDocument", mock.Anything, form.Document).
		Run(func(mock.Arguments) { order = append(order, "upload") }).
		Return(&models.UploadedDocument{ID: "doc-1"}, nil).Once()
	api.On("UpdateProfile", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { order = append(order, "patch") }).
		Return(json.RawMessage(`{}`), nil).Once()

	out, err := p.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, []string{"upload", "patch"}, order)
	assert.Equal(t, models.ID("doc-1"), out.Document.ID)
}

func TestSubmit_UploadFailureAborts(t *testing.T) {
	p, api := newTestPipeline(t)
	form := completeForm()
	form.Document = &models.Document{FileName: "cr.pdf", Content: []byte("pdf")}

	api.On("UploadDocument", mock.Anything, mock.Anything).
		Return(nil, &supplierapi.HTTPError{Status: 413, Message: "File too large"}).Once()

	out, err := p.Submit(context.Background(), form)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUploadFailed))
	assert.Equal(t, "Document upload failed: File too large", out.Message)
	assert.False(t, out.Submitted)
	api.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestSubmit_RequiredChecksInOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *models.ProfileFormData)
		message string
	}{
		{"everything missing", func(f *models.ProfileFormData) { *f = *models.NewProfileFormData() }, MsgBusinessNameRequired},
		{"phone", func(f *models.ProfileFormData) { f.MainPhone = "  " }, MsgPhoneRequired},
		{"type", func(f *models.ProfileFormData) { f.BusinessType = ""; f.Categories = nil }, MsgBusinessTypeRequired},
		{"categories", func(f *models.ProfileFormData) { f.Categories = []string{}; f.Services = nil }, MsgCategoryRequired},
		{"services", func(f *models.ProfileFormData) { f.Services = nil; f.TargetCustomers = nil }, MsgServiceRequired},
		{"target customers", func(f *models.ProfileFormData) { f.TargetCustomers = []string{} }, MsgTargetCustomersRequired},
		{"email", func(f *models.ProfileFormData) { f.ContactEmail = "not-an-email" }, MsgInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, api := newTestPipeline(t)
			form := completeForm()
			tt.mutate(form)

			out, err := p.Submit(context.Background(), form)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSubmissionRejected))
			assert.Equal(t, tt.message, out.Message)
			api.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_ValidationErrorIsLabelled(t *testing.T) {
	p, api := newTestPipeline(t)
	api.On("UpdateProfile", mock.Anything, mock.Anything).Return(nil, &supplierapi.ValidationError{
		Fields: models.FieldErrors{"businessName": {"The business name field is required."}},
	}).Once()

	out, err := p.Submit(context.Background(), completeForm())
	require.Error(t, err)
	assert.Equal(t, "Business name: The business name field is required.", out.Message)
	assert.Equal(t, []string{"The business name field is required."}, out.FieldErrors["businessName"])
}

func TestSubmit_OtherErrorShowsRawMessage(t *testing.T) {
	p, api := newTestPipeline(t)
	api.On("UpdateProfile", mock.Anything, mock.Anything).
		Return(nil, &supplierapi.HTTPError{Status: 500}).Once()

	out, err := p.Submit(context.Background(), completeForm())
	require.Error(t, err)
	assert.Equal(t, "HTTP error 500", out.Message)
	api.AssertNumberOfCalls(t, "UpdateProfile", 1)
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	p, api := newTestPipeline(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	api.On("UpdateProfile", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(json.RawMessage(`{}`), nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := p.Submit(context.Background(), completeForm())
		assert.NoError(t, err)
	}()

	<-entered
	assert.True(t, p.Submitting())
	_, err := p.Submit(context.Background(), completeForm())
	assert.True(t, errors.Is(err, ErrAlreadySubmitting))

	close(release)
	wg.Wait()
	assert.False(t, p.Submitting())
	api.AssertNumberOfCalls(t, "UpdateProfile", 1)
}

// The wizard scenario: steps 1-3 filled, services picked, target customers
// never set. The pipeline stops before any PATCH.
func TestSubmit_TargetCustomersNeverSet(t *testing.T) {
	p, api := newTestPipeline(t)
	form := models.NewProfileFormData()
	form.BusinessName = "Acme"
	form.BusinessType = "Supplier"
	form.Category = "Electronics"
	form.Categories = []string{"Electronics"}
	form.ProductKeywords = []string{"wholesale"}
	form.MainPhone = "512345678"
	form.Address = "Riyadh"
	form.Services = []string{"Delivery"}

	assert.Equal(t, "", BuildPayload(form).WhoDoYouServe)

	out, err := p.Submit(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, MsgTargetCustomersRequired, out.Message)
	api.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}
