// internal/models/engagement.go
package models

import (
	"strings"
	"unicode/utf8"
)

const (
	MinRating = 1
	MaxRating = 5

	MaxReviewCommentLength = 1000
	MaxInquiryMessageChars = 2000
)

// ReviewRequest is POST /api/supplier/ratings.
type ReviewRequest struct {
	SupplierID string `json:"supplier_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

func (r ReviewRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(r.SupplierID) == "" {
		errs.Add("supplier_id", "Supplier is required")
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		errs.Add("rating", "Please select a rating between 1 and 5")
	}
	if utf8.RuneCountInString(r.Comment) > MaxReviewCommentLength {
		errs.Add("comment", "Comment must be at most 1000 characters")
	}
	return errs
}

// InquiryRequest is POST /api/supplier/supplier-inquiries.
type InquiryRequest struct {
	SupplierID string `json:"supplier_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Subject    string `json:"subject"`
	Message    string `json:"message"`
}

func (r InquiryRequest) Validate(emailValid func(string) bool) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(r.SupplierID) == "" {
		errs.Add("supplier_id", "Supplier is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		errs.Add("name", "Name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs.Add("email", "Email is required")
	} else if !emailValid(r.Email) {
		errs.Add("email", "Please enter a valid email address")
	}
	if strings.TrimSpace(r.Subject) == "" {
		errs.Add("subject", "Subject is required")
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		errs.Add("message", "Message is required")
	} else if utf8.RuneCountInString(msg) > MaxInquiryMessageChars {
		errs.Add("message", "Message must be at most 2000 characters")
	}
	return errs
}

type InquiryResponse struct {
	ID      ID     `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TrackViewRequest is POST /api/supplier/analytics/track-view.
// DurationSeconds is zero on the dwell call and the final elapsed time on
// the leave call.
type TrackViewRequest struct {
	SupplierID      string `json:"supplier_id"`
	DurationSeconds int    `json:"duration"`
}

// TrackSearchRequest is POST /api/supplier/analytics/track-search.
type TrackSearchRequest struct {
	Keyword      string `json:"keyword,omitempty"`
	Category     string `json:"category,omitempty"`
	Location     string `json:"location,omitempty"`
	ResultsCount int    `json:"results_count"`
}
