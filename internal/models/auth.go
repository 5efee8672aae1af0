// internal/models/auth.go
package models

import (
	"encoding/json"
	"strings"
)

// UserType identifies which user record the session holds.
type UserType string

const (
	UserTypeSupplier UserType = "supplier"
	UserTypeAdmin    UserType = "admin"
)

// FieldErrors maps a form field to its messages, as the backend sends them
// in 422 responses.
type FieldErrors map[string][]string

// Add appends a message for field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// First returns the first message for field, if any.
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

type RegisterRequest struct {
	BusinessName         string `json:"business_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Validate mirrors the registration form's inline checks.
func (r RegisterRequest) Validate(emailValid func(string) bool) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(r.BusinessName) == "" {
		errs.Add("business_name", "Business name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs.Add("email", "Email is required")
	} else if !emailValid(r.Email) {
		errs.Add("email", "Please enter a valid email address")
	}
	if strings.TrimSpace(r.Phone) == "" {
		errs.Add("phone", "Phone number is required")
	}
	if len(r.Password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
	}
	if r.Password != r.PasswordConfirmation {
		errs.Add("password_confirmation", "Passwords do not match")
	}
	return errs
}

type LoginRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	UserType UserType `json:"user_type,omitempty"`
}

type OTPRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type VerifyOTPRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	OTP   string `json:"otp"`
}

// AuthResponse is returned by login, and by verify-otp when it opens a
// session. Token is empty when no session was created.
type AuthResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Token     string          `json:"token,omitempty"`
	TokenType string          `json:"token_type,omitempty"`
	UserType  UserType        `json:"user_type,omitempty"`
	User      json.RawMessage `json:"user,omitempty"`
}

// HasSession reports whether the response carries a token to persist.
func (a *AuthResponse) HasSession() bool {
	return a != nil && a.Token != ""
}

// RegisterResponse carries the verification hand-off for the wizard.
type RegisterResponse struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message,omitempty"`
	SupplierID   ID               `json:"supplier_id,omitempty"`
	Verification VerificationData `json:"verification"`
}

// VerificationData bridges registration into the profile wizard.
type VerificationData struct {
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}
