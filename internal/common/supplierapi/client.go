// Package supplierapi is the client for the directory backend's REST API.
package supplierapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "supplier-portal/internal/common/errors"
	httpclient "supplier-portal/internal/common/http"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/metrics"
	"supplier-portal/internal/common/observability"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/models"
)

// SessionStore is what the client needs from the session: the bearer token
// for authenticated calls and a place to persist new logins.
type SessionStore interface {
	Token(ctx context.Context) (token, tokenType string, err error)
	SaveLogin(ctx context.Context, auth *models.AuthResponse) error
}

// Multipart is a single-file upload body.
type Multipart struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
	Fields      map[string]string
}

// RequestOptions describes one call.
type RequestOptions struct {
	Method    string
	Query     url.Values
	Body      interface{}
	Multipart *Multipart
	Headers   map[string]string
}

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

type Client struct {
	baseURL    string
	doer       httpclient.Doer
	session    SessionStore
	logger     logger.Logger
	obs        *observability.Observability
	timeout    time.Duration
	retryReads bool
	backoff    httpclient.Backoff
}

type Option func(*Client)

// WithDoer replaces the HTTP transport.
func WithDoer(d httpclient.Doer) Option {
	return func(c *Client) { c.doer = d }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithObservability(o *observability.Observability) Option {
	return func(c *Client) { c.obs = o }
}

// WithTimeout bounds every call through its context. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithReadRetry retries GET requests on transport errors and 5xx
// responses. Mutating calls are never retried.
func WithReadRetry(b httpclient.Backoff) Option {
	return func(c *Client) {
		c.retryReads = true
		c.backoff = b
	}
}

func New(baseURL string, sess SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    httpclient.NewClient(0),
		session: sess,
		logger:  logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request performs one call and returns the response body. Bodies that are
// not JSON come back as "{}".
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, requiresAuth bool) (json.RawMessage, error) {
	mode := authNone
	if requiresAuth {
		mode = authRequired
	}
	return c.do(ctx, endpoint, opts, mode)
}

func (c *Client) do(ctx context.Context, endpoint string, opts RequestOptions, mode authMode) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	authHeader, err := c.authorization(ctx, mode)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + endpoint
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	attempt := func(int) (json.RawMessage, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, apperrors.NewInvalidInputError(err.Error())
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}
		return c.roundTrip(ctx, req, endpoint)
	}

	if method != http.MethodGet || !c.retryReads {
		return attempt(1)
	}

	var out json.RawMessage
	err = httpclient.Retry(ctx, c.backoff,
		func(n int) error {
			var err error
			out, err = attempt(n)
			return err
		},
		func(err error) bool { return apperrors.Normalize(err).Retryable },
		func(n int, delay time.Duration, err error) {
			c.logger.Warn("retrying read request", map[string]interface{}{
				"endpoint": endpoint,
				"attempt":  n,
				"delay":    delay.String(),
				"error":    err.Error(),
			})
		},
	)
	return out, err
}

func (c *Client) authorization(ctx context.Context, mode authMode) (string, error) {
	if mode == authNone || c.session == nil {
		if mode == authRequired {
			return "", ErrNoAuthToken
		}
		return "", nil
	}
	token, tokenType, err := c.session.Token(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			if mode == authRequired {
				return "", ErrNoAuthToken
			}
			return "", nil
		}
		return "", err
	}
	if tokenType == "" {
		tokenType = session.DefaultTokenType
	}
	return tokenType + " " + token, nil
}

func encodeBody(opts RequestOptions) ([]byte, string, error) {
	if opts.Multipart != nil {
		return encodeMultipart(opts.Multipart)
	}
	if opts.Body == nil {
		return nil, "application/json", nil
	}
	data, err := json.Marshal(opts.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return data, "application/json", nil
}

func encodeMultipart(m *Multipart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	field := m.FieldName
	if field == "" {
		field = "file"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, m.FileName))
	ct := m.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if m.Content != nil {
		if _, err := io.Copy(part, m.Content); err != nil {
			return nil, "", fmt.Errorf("read upload content: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) roundTrip(ctx context.Context, req *http.Request, endpoint string) (json.RawMessage, error) {
	label := routeLabel(endpoint)
	start := time.Now()

	resp, err := c.doer.Do(req)
	if err != nil {
		c.record(ctx, req.Method, label, 0, time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewRequestTimeoutError(endpoint, err)
		}
		return nil, apperrors.NewNetworkError(endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.record(ctx, req.Method, label, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, apperrors.NewNetworkError(endpoint, err)
	}

	parsed := json.RawMessage(raw)
	if len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
		parsed = json.RawMessage("{}")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return parsed, nil
	}

	c.logger.Debug("api request failed", map[string]interface{}{
		"method":   req.Method,
		"endpoint": endpoint,
		"status":   resp.StatusCode,
	})

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, parseValidationError(parsed)
	}
	return nil, &HTTPError{Status: resp.StatusCode, Message: serverMessage(parsed)}
}

func (c *Client) record(ctx context.Context, method, label string, status int, d time.Duration) {
	metrics.APIRequestsTotal.WithLabelValues(method, label, strconv.Itoa(status)).Inc()
	metrics.APIRequestDuration.WithLabelValues(method, label).Observe(d.Seconds())
	c.obs.RecordAPICall(ctx, label, status, d)
}

// parseValidationError accepts {"message":..., "errors":{field:[msg]}} and a
// bare {field:[msg]} map. A single string message per field is also taken.
func parseValidationError(body json.RawMessage) *ValidationError {
	var envelope map[string]json.RawMessage
	_ = json.Unmarshal(body, &envelope)

	ve := &ValidationError{Fields: models.FieldErrors{}}
	if msg, ok := envelope["message"]; ok {
		_ = json.Unmarshal(msg, &ve.Message)
	}

	source := envelope
	if nested, ok := envelope["errors"]; ok {
		var inner map[string]json.RawMessage
		if json.Unmarshal(nested, &inner) == nil {
			source = inner
		}
	}

	for field, value := range source {
		if field == "message" || field == "errors" {
			continue
		}
		var msgs []string
		if json.Unmarshal(value, &msgs) == nil {
			ve.Fields[field] = msgs
			continue
		}
		var one string
		if json.Unmarshal(value, &one) == nil {
			ve.Fields[field] = []string{one}
		}
	}
	return ve
}

func serverMessage(body json.RawMessage) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

var idSegment = regexp.MustCompile(`^([0-9]+|[0-9a-fA-F-]{32,36})$`)

// routeLabel collapses ids so metrics stay low-cardinality.
func routeLabel(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.Split(endpoint, "/")
	for i, p := range parts {
		if idSegment.MatchString(p) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// decode unmarshals a response into v, unwrapping a {"data": ...} envelope
// when its payload is an object or array. Once the envelope is taken, a
// payload that does not fit v is an error; the raw body is never tried.
func decode(raw json.RawMessage, v interface{}) error {
	if data, ok := envelopeData(raw); ok {
		return unmarshalResponse(data, v)
	}
	return unmarshalResponse(raw, v)
}

// decodeList reads a paginated listing, which carries its own top-level
// "data" array. A listing nested in an envelope object is unwrapped first.
func decodeList(raw json.RawMessage, v *models.BusinessListResponse) error {
	if data, ok := envelopeData(raw); ok && data[0] == '{' {
		return unmarshalResponse(data, v)
	}
	return unmarshalResponse(raw, v)
}

func envelopeData(raw json.RawMessage) (json.RawMessage, bool) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &envelope) != nil {
		return nil, false
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || (data[0] != '{' && data[0] != '[') {
		return nil, false
	}
	return data, true
}

func unmarshalResponse(data json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("unexpected response shape: %v", err))
	}
	return nil
}
