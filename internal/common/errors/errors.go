// Package errors provides the structured error model shared by the API
// client, the submission pipeline and the BPMN workers.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeSubmissionRejected ErrorCode = "SUBMISSION_REJECTED"
	ErrCodeSubmissionBusy     ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeSubmitNotConfirmed ErrorCode = "SUBMIT_NOT_CONFIRMED"
	ErrCodeNotFinalStep       ErrorCode = "NOT_FINAL_STEP"
	ErrCodeAlreadySubmitted   ErrorCode = "ALREADY_SUBMITTED"

	ErrCodeAuthTokenMissing ErrorCode = "AUTH_TOKEN_MISSING"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"

	ErrCodeHTTPError      ErrorCode = "HTTP_ERROR"
	ErrCodeNetworkError   ErrorCode = "NETWORK_ERROR"
	ErrCodeRequestTimeout ErrorCode = "REQUEST_TIMEOUT"
	ErrCodeNotFound       ErrorCode = "RESOURCE_NOT_FOUND"

	ErrCodeUploadFailed ErrorCode = "UPLOAD_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error so errors.Is/As keep working.
func (e *StandardError) WithCause(err error) *StandardError {
	e.cause = err
	if e.Details == "" && err != nil {
		e.Details = err.Error()
	}
	return e
}

// Converter is implemented by typed errors that know their StandardError form.
type Converter interface {
	StandardError() *StandardError
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError carries a field -> messages map from the backend.
func NewValidationFailedError(message string, fields map[string][]string) *StandardError {
	e := newError(ErrCodeValidationFailed, message, "", false)
	if len(fields) > 0 {
		e.Metadata = map[string]interface{}{"fields": fields}
	}
	return e
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false)
}

// NewSubmissionRejectedError is raised by client-side checks before any
// mutating request goes out.
func NewSubmissionRejectedError(field, message string) *StandardError {
	e := newError(ErrCodeSubmissionRejected, message, "field: "+field, false)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

func NewSubmissionInProgressError() *StandardError {
	return newError(ErrCodeSubmissionBusy, "A submission is already in progress", "", false)
}

func NewSubmitNotConfirmedError() *StandardError {
	return newError(ErrCodeSubmitNotConfirmed, "Submission must be confirmed from the final step", "", false)
}

func NewNotFinalStepError() *StandardError {
	return newError(ErrCodeNotFinalStep, "Confirmation is only possible on the final step", "", false)
}

func NewAlreadySubmittedError() *StandardError {
	return newError(ErrCodeAlreadySubmitted, "Profile already submitted", "", false)
}

func NewAuthTokenMissingError() *StandardError {
	return newError(ErrCodeAuthTokenMissing, "No auth token found", "", false)
}

func NewHTTPError(status int, message string) *StandardError {
	e := newError(ErrCodeHTTPError, message, fmt.Sprintf("status: %d", status), status >= 500)
	e.Metadata = map[string]interface{}{"status": status}
	switch status {
	case 401, 403:
		e.Code = ErrCodeUnauthorized
	case 404:
		e.Code = ErrCodeNotFound
	}
	return e
}

func NewNetworkError(endpoint string, err error) *StandardError {
	return newError(ErrCodeNetworkError, "Network request failed", fmt.Sprintf("endpoint: %s", endpoint), true).WithCause(err)
}

func NewRequestTimeoutError(endpoint string, err error) *StandardError {
	return newError(ErrCodeRequestTimeout, "Request timed out", fmt.Sprintf("endpoint: %s", endpoint), true).WithCause(err)
}

func NewUploadFailedError(fileName string, err error) *StandardError {
	e := newError(ErrCodeUploadFailed, "Document upload failed", fmt.Sprintf("file: %s", fileName), false).WithCause(err)
	if msg := Message(err); msg != "" {
		e.Message = "Document upload failed: " + msg
	}
	return e
}

func NewSessionStoreError(op string, err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Session storage error", fmt.Sprintf("op: %s", op), true).WithCause(err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:   "PROFILE_VALIDATION_FAILED",
	ErrCodeInvalidInput:       "INVALID_INPUT",
	ErrCodeSubmissionRejected: "PROFILE_INCOMPLETE",
	ErrCodeSubmissionBusy:     "SUBMISSION_IN_PROGRESS",
	ErrCodeAuthTokenMissing:   "AUTH_TOKEN_MISSING",
	ErrCodeUnauthorized:       "UNAUTHORIZED",
	ErrCodeHTTPError:          "BACKEND_ERROR",
	ErrCodeNetworkError:       "BACKEND_UNREACHABLE",
	ErrCodeRequestTimeout:     "BACKEND_TIMEOUT",
	ErrCodeNotFound:           "RESOURCE_NOT_FOUND",
	ErrCodeUploadFailed:       "DOCUMENT_UPLOAD_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
// Only transport-level failures are retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeNetworkError, ErrCodeSessionStoreFailed:
		return 3
	case ErrCodeRequestTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// Normalize always returns a StandardError for err.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	var conv Converter
	if errors.As(err, &conv) {
		return conv.StandardError()
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false).WithCause(err)
}

// AtMostOnce returns a copy of err's standard form marked not retryable.
// Use it once a mutating call has been attempted and may have taken effect.
func AtMostOnce(err error) *StandardError {
	if err == nil {
		return nil
	}
	std := *Normalize(err)
	std.Retryable = false
	if std.cause == nil {
		std.cause = err
	}
	return &std
}

// Message returns the user-facing message of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Message
	}
	var conv Converter
	if errors.As(err, &conv) {
		return conv.StandardError().Message
	}
	return err.Error()
}

// HasCode reports whether err normalizes to the given code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return Normalize(err).Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTH"):
		return "AUTH"
	case strings.Contains(codeStr, "UPLOAD"):
		return "UPLOAD"
	case strings.Contains(codeStr, "SUBMI"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "HTTP") || strings.Contains(codeStr, "NETWORK") ||
		strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "NOT_FOUND"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	default:
		return "OTHER"
	}
}
