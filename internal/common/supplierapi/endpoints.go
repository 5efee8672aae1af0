package supplierapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/models"
)

const (
	EndpointRegister        = "/api/supplier/register"
	EndpointLogin           = "/api/auth/login"
	EndpointSendOTP         = "/api/auth/send-otp"
	EndpointVerifyOTP       = "/api/auth/verify-otp"
	EndpointProfile         = "/api/supplier/profile"
	EndpointDocuments       = "/api/supplier/documents"
	EndpointProductImages   = "/api/supplier/product-images"
	EndpointPublicBusiness  = "/api/public/businesses"
	EndpointRatings         = "/api/supplier/ratings"
	EndpointInquiries       = "/api/supplier/supplier-inquiries"
	EndpointTrackView       = "/api/supplier/analytics/track-view"
	EndpointTrackSearch     = "/api/supplier/analytics/track-search"
	EndpointAdminDashboard  = "/api/admin/dashboard"
	EndpointPartnerships    = "/api/public/partnerships"
	EndpointPartnershipStat = "/api/public/partnerships/statistics"
)

func businessEndpoint(id string) string {
	return "/api/suppliers/" + url.PathEscape(id) + "/business"
}

// Register creates a supplier account. Field errors come back as a
// *ValidationError for inline display.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	raw, err := c.do(ctx, EndpointRegister, RequestOptions{Method: http.MethodPost, Body: req}, authNone)
	if err != nil {
		return nil, err
	}
	var out models.RegisterResponse
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	if out.Verification.BusinessName == "" {
		out.Verification = models.VerificationData{BusinessName: req.BusinessName, Email: req.Email, Phone: req.Phone}
	}
	return &out, nil
}

// Login authenticates and persists the session.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	raw, err := c.do(ctx, EndpointLogin, RequestOptions{Method: http.MethodPost, Body: req}, authNone)
	if err != nil {
		return nil, err
	}
	return c.persistAuth(ctx, raw, req.UserType)
}

func (c *Client) SendOTP(ctx context.Context, req models.OTPRequest) (*models.MessageResponse, error) {
	raw, err := c.do(ctx, EndpointSendOTP, RequestOptions{Method: http.MethodPost, Body: req}, authNone)
	if err != nil {
		return nil, err
	}
	var out models.MessageResponse
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP checks a code. When the backend answers with a token the
// session is persisted just like Login.
func (c *Client) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.AuthResponse, error) {
	raw, err := c.do(ctx, EndpointVerifyOTP, RequestOptions{Method: http.MethodPost, Body: req}, authNone)
	if err != nil {
		return nil, err
	}
	return c.persistAuth(ctx, raw, models.UserTypeSupplier)
}

func (c *Client) persistAuth(ctx context.Context, raw json.RawMessage, fallback models.UserType) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	if out.UserType == "" {
		out.UserType = fallback
	}
	if out.HasSession() && c.session != nil {
		if err := c.session.SaveLogin(ctx, &out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (c *Client) GetProfile(ctx context.Context) (*models.SupplierProfile, error) {
	raw, err := c.do(ctx, EndpointProfile, RequestOptions{}, authRequired)
	if err != nil {
		return nil, err
	}
	var out models.SupplierProfile
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends the normalized payload. The response is returned
// unparsed.
func (c *Client) UpdateProfile(ctx context.Context, payload models.ProfileUpdateData) (json.RawMessage, error) {
	return c.do(ctx, EndpointProfile, RequestOptions{Method: http.MethodPatch, Body: payload}, authRequired)
}

// UploadDocument sends the verification document as multipart.
func (c *Client) UploadDocument(ctx context.Context, doc *models.Document) (*models.UploadedDocument, error) {
	rc, err := doc.Open()
	if err != nil {
		return nil, apperrors.NewUploadFailedError(doc.Name(), err)
	}
	defer rc.Close()

	raw, err := c.do(ctx, EndpointDocuments, RequestOptions{
		Method: http.MethodPost,
		Multipart: &Multipart{
			FieldName:   "document",
			FileName:    doc.Name(),
			ContentType: doc.ContentType,
			Content:     rc,
		},
	}, authRequired)
	if err != nil {
		return nil, err
	}
	var out models.UploadedDocument
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadProductImage(ctx context.Context, fileName, contentType string, content io.Reader) (*models.ProductImage, error) {
	raw, err := c.do(ctx, EndpointProductImages, RequestOptions{
		Method: http.MethodPost,
		Multipart: &Multipart{
			FieldName:   "image",
			FileName:    fileName,
			ContentType: contentType,
			Content:     content,
		},
	}, authRequired)
	if err != nil {
		return nil, err
	}
	var out models.ProductImage
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProductImage(ctx context.Context, id string) error {
	_, err := c.do(ctx, EndpointProductImages+"/"+url.PathEscape(id), RequestOptions{Method: http.MethodDelete}, authRequired)
	return err
}

// ListBusinesses queries the public directory. A stored token is sent when
// present.
func (c *Client) ListBusinesses(ctx context.Context, q models.BusinessListQuery) (*models.BusinessListResponse, error) {
	raw, err := c.do(ctx, EndpointPublicBusiness, RequestOptions{Query: q.Values()}, authOptional)
	if err != nil {
		return nil, err
	}
	var out models.BusinessListResponse
	if err := decodeList(raw, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []models.BusinessSummary{}
	}
	return &out, nil
}

func (c *Client) GetBusiness(ctx context.Context, supplierID string) (*models.BusinessDetail, error) {
	raw, err := c.do(ctx, businessEndpoint(supplierID), RequestOptions{}, authOptional)
	if err != nil {
		return nil, err
	}
	var out models.BusinessDetail
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitReview(ctx context.Context, req models.ReviewRequest) (*models.MessageResponse, error) {
	raw, err := c.do(ctx, EndpointRatings, RequestOptions{Method: http.MethodPost, Body: req}, authRequired)
	if err != nil {
		return nil, err
	}
	var out models.MessageResponse
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendInquiry(ctx context.Context, req models.InquiryRequest) (*models.InquiryResponse, error) {
	raw, err := c.do(ctx, EndpointInquiries, RequestOptions{Method: http.MethodPost, Body: req}, authRequired)
	if err != nil {
		return nil, err
	}
	var out models.InquiryResponse
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TrackView(ctx context.Context, req models.TrackViewRequest) error {
	_, err := c.do(ctx, EndpointTrackView, RequestOptions{Method: http.MethodPost, Body: req}, authRequired)
	return err
}

func (c *Client) TrackSearch(ctx context.Context, req models.TrackSearchRequest) error {
	_, err := c.do(ctx, EndpointTrackSearch, RequestOptions{Method: http.MethodPost, Body: req}, authRequired)
	return err
}

// AdminDashboard fetches aggregate statistics for the last rangeDays days.
func (c *Client) AdminDashboard(ctx context.Context, rangeDays int) (*models.DashboardStats, error) {
	q := url.Values{"range": []string{strconv.Itoa(rangeDays)}}
	raw, err := c.do(ctx, EndpointAdminDashboard, RequestOptions{Query: q}, authRequired)
	if err != nil {
		return nil, err
	}
	var out models.DashboardStats
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	if out.RangeDays == 0 {
		out.RangeDays = rangeDays
	}
	return &out, nil
}

func (c *Client) Partnerships(ctx context.Context) ([]models.Partnership, error) {
	raw, err := c.do(ctx, EndpointPartnerships, RequestOptions{}, authOptional)
	if err != nil {
		return nil, err
	}
	out := []models.Partnership{}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PartnerStatistics(ctx context.Context) (*models.PartnerStatistics, error) {
	raw, err := c.do(ctx, EndpointPartnershipStat, RequestOptions{}, authOptional)
	if err != nil {
		return nil, err
	}
	var out models.PartnerStatistics
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
