package supplierapi

import (
	"fmt"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/models"
)

// ErrNoAuthToken is returned before any network call when an authenticated
// endpoint is used without a stored token.
var ErrNoAuthToken error = noAuthTokenError{}

type noAuthTokenError struct{}

func (noAuthTokenError) Error() string { return "No auth token found" }

func (noAuthTokenError) StandardError() *apperrors.StandardError {
	return apperrors.NewAuthTokenMissingError()
}

// ValidationError is a 422 response with its field messages.
type ValidationError struct {
	Message string
	Fields  models.FieldErrors
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Validation failed"
}

func (e *ValidationError) StandardError() *apperrors.StandardError {
	return apperrors.NewValidationFailedError(e.Error(), e.Fields)
}

// HTTPError is any other non-2xx response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error %d", e.Status)
}

func (e *HTTPError) StandardError() *apperrors.StandardError {
	return apperrors.NewHTTPError(e.Status, e.Error())
}
