package supplierapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "supplier-portal/internal/common/errors"
	httpclient "supplier-portal/internal/common/http"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sess := session.New(session.NewMemoryStore())
	opts = append([]Option{WithLogger(logger.NewTestLogger(t))}, opts...)
	return New(srv.URL, sess, opts...), sess
}

func signIn(t *testing.T, sess *session.Session) {
	t.Helper()
	require.NoError(t, sess.SaveLogin(context.Background(), &models.AuthResponse{Token: "tok-1", TokenType: "Bearer"}))
}

func TestRequest_RequiresTokenBeforeNetwork(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.Request(context.Background(), EndpointProfile, RequestOptions{}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAuthToken)
	assert.Equal(t, "No auth token found", err.Error())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAuthTokenMissing))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRequest_SetsHeaders(t *testing.T) {
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, http.MethodPatch, r.Method)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	signIn(t, sess)

	raw, err := client.Request(context.Background(), EndpointProfile, RequestOptions{
		Method: http.MethodPatch,
		Body:   map[string]string{"businessName": "Acme"},
	}, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestRequest_MalformedBodyFallsBackToEmptyObject(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	raw, err := client.Request(context.Background(), EndpointPublicBusiness, RequestOptions{}, false)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestRequest_422BecomesValidationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare field map", `{"businessName": ["The business name field is required."]}`},
		{"laravel envelope", `{"message": "The given data was invalid.", "errors": {"businessName": ["The business name field is required."]}}`},
		{"single string", `{"errors": {"businessName": "The business name field is required."}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(tt.body))
			})
			signIn(t, sess)

			_, err := client.UpdateProfile(context.Background(), models.ProfileUpdateData{})
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, []string{"The business name field is required."}, ve.Fields["businessName"])
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
		})
	}
}

func TestRequest_NonSuccessBecomesHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		code    apperrors.ErrorCode
	}{
		{"server message", http.StatusForbidden, `{"message":"Forbidden area"}`, "Forbidden area", apperrors.ErrCodeUnauthorized},
		{"fallback", http.StatusInternalServerError, ``, "HTTP error 500", apperrors.ErrCodeHTTPError},
		{"not found", http.StatusNotFound, `{"error":"No such supplier"}`, "No such supplier", apperrors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetBusiness(context.Background(), "42")
			var he *HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.status, he.Status)
			assert.Equal(t, tt.message, err.Error())
			assert.True(t, apperrors.HasCode(err, tt.code))
		})
	}
}

func TestRequest_ReadRetryOnlyForGET(t *testing.T) {
	var gets, posts int32
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if atomic.AddInt32(&gets, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"data": {"id": "42", "business_name": "Acme"}}`))
			return
		}
		atomic.AddInt32(&posts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithReadRetry(httpclient.Backoff{MaxAttempts: 3, InitialDelay: time.Millisecond}))
	signIn(t, sess)

	detail, err := client.GetBusiness(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Acme", detail.BusinessName)
	assert.EqualValues(t, 3, atomic.LoadInt32(&gets))

	_, err = client.SendInquiry(context.Background(), models.InquiryRequest{SupplierID: "42"})
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&posts))
}

func TestRequest_NoRetryOn4xx(t *testing.T) {
	var gets int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&gets, 1)
		w.WriteHeader(http.StatusNotFound)
	}, WithReadRetry(httpclient.Backoff{MaxAttempts: 3, InitialDelay: time.Millisecond}))

	_, err := client.GetBusiness(context.Background(), "missing")
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&gets))
}

func TestRequest_TimeoutIsReported(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, WithTimeout(20*time.Millisecond))

	_, err := client.ListBusinesses(context.Background(), models.BusinessListQuery{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRequestTimeout))
}

func TestRequest_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(url, nil)
	_, err := client.ListBusinesses(context.Background(), models.BusinessListQuery{})
	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeNetworkError, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/suppliers/:id/business", routeLabel("/api/suppliers/42/business"))
	assert.Equal(t, "/api/supplier/product-images/:id", routeLabel("/api/supplier/product-images/6f1c2b1e-8a3d-4f5e-9b7a-1c2d3e4f5a6b"))
	assert.Equal(t, "/api/public/businesses", routeLabel("/api/public/businesses?page=2"))
}

func TestEncodeMultipart(t *testing.T) {
	body, ct, err := encodeMultipart(&Multipart{
		FieldName: "document",
		FileName:  "cr.pdf",
		Content:   strings.NewReader("%PDF-1.4"),
		Fields:    map[string]string{"kind": "commercial_registration"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, "multipart/form-data; boundary="))
	assert.Contains(t, string(body), `filename="cr.pdf"`)
	assert.Contains(t, string(body), "%PDF-1.4")
	assert.Contains(t, string(body), "commercial_registration")
}

func TestDecode_UnwrapsDataEnvelope(t *testing.T) {
	var stats models.DashboardStats
	require.NoError(t, decode(json.RawMessage(`{"data":{"total_suppliers":12}}`), &stats))
	assert.Equal(t, 12, stats.TotalSuppliers)

	var list models.BusinessListResponse
	require.NoError(t, decodeList(json.RawMessage(`{"data":[{"id":"1"}],"meta":{"total":1}}`), &list))
	assert.Len(t, list.Data, 1)
	assert.Equal(t, 1, list.Meta.Total)

	var nested models.BusinessListResponse
	require.NoError(t, decodeList(json.RawMessage(`{"success":true,"data":{"data":[{"id":2}],"meta":{"total":1}}}`), &nested))
	require.Len(t, nested.Data, 1)
	assert.Equal(t, models.ID("2"), nested.Data[0].ID)
}

func TestDecode_EnvelopeMismatchIsAnError(t *testing.T) {
	var detail models.BusinessDetail
	err := decode(json.RawMessage(`{"data":[{"id":"1"}]}`), &detail)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.Normalize(err).Code)

	var msg models.MessageResponse
	require.NoError(t, decode(json.RawMessage(`{"success":true,"message":"ok","data":true}`), &msg))
	assert.Equal(t, "ok", msg.Message)
}

func TestDirectory_NumericIDs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/suppliers/42/business":
			_, _ = w.Write([]byte(`{"data":{"id":42,"business_name":"Acme","branches":[{"id":3,"name":"Jeddah"}]}}`))
		default:
			_, _ = w.Write([]byte(`{"data":[{"id":42,"business_name":"Acme","preferences":{"profile_visibility":"limited"}}],"meta":{"total":1}}`))
		}
	})
	ctx := context.Background()

	detail, err := client.GetBusiness(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, models.ID("42"), detail.ID)
	assert.Equal(t, "Acme", detail.BusinessName)
	require.Len(t, detail.Branches, 1)
	assert.Equal(t, models.ID("3"), detail.Branches[0].ID)

	list, err := client.ListBusinesses(ctx, models.BusinessListQuery{SupplierID: "42"})
	require.NoError(t, err)
	summary, ok := list.Find("42")
	require.True(t, ok)
	require.NotNil(t, summary.Preferences)
	assert.True(t, summary.Preferences.IsLimited())
}

func TestUploadDocument_SendsMultipart(t *testing.T) {
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EndpointDocuments, r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		f, hdr, err := r.FormFile("document")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "cr.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4", readAll(t, f))
		_, _ = w.Write([]byte(`{"data":{"id":"doc-1","file_name":"cr.pdf","status":"pending"}}`))
	})
	signIn(t, sess)

	doc, err := client.UploadDocument(context.Background(), &models.Document{FileName: "cr.pdf", Content: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, models.ID("doc-1"), doc.ID)
}

func TestUploadDocument_MissingFile(t *testing.T) {
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	signIn(t, sess)

	_, err := client.UploadDocument(context.Background(), &models.Document{FileName: "cr.pdf"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUploadFailed))
}

func TestLogin_PersistsSession(t *testing.T) {
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "owner@acme.sa", body.Email)
		_, _ = w.Write([]byte(`{"token":"fresh","token_type":"Bearer","user":{"id":"7","name":"Owner"}}`))
	})

	resp, err := client.Login(context.Background(), models.LoginRequest{Email: "owner@acme.sa", Password: "secret", UserType: models.UserTypeSupplier})
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeSupplier, resp.UserType)

	token, tokenType, err := sess.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, "Bearer", tokenType)
}

func TestRegister_FallsBackToRequestForVerification(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Registered"}`))
	})

	resp, err := client.Register(context.Background(), models.RegisterRequest{BusinessName: "Acme", Email: "a@acme.sa", Phone: "0500000000"})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationData{BusinessName: "Acme", Email: "a@acme.sa", Phone: "0500000000"}, resp.Verification)
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}
