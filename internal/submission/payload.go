package submission

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/validation"
	"supplier-portal/internal/models"
)

const (
	MsgBusinessNameRequired    = "Business name is required"
	MsgPhoneRequired           = "Phone number is required"
	MsgBusinessTypeRequired    = "Business type is required"
	MsgCategoryRequired        = "At least one category is required"
	MsgServiceRequired         = "At least one service is required"
	MsgTargetCustomersRequired = "Target customers information is required"
	MsgInvalidEmail            = "Please enter a valid email address"
)

type requiredCheck struct {
	field   string
	message string
	missing func(*models.ProfileFormData) bool
}

// Checked in this order; only the first failure is reported.
var requiredChecks = []requiredCheck{
	{"businessName", MsgBusinessNameRequired, func(f *models.ProfileFormData) bool { return blank(f.BusinessName) }},
	{"mainPhone", MsgPhoneRequired, func(f *models.ProfileFormData) bool { return blank(f.MainPhone) }},
	{"businessType", MsgBusinessTypeRequired, func(f *models.ProfileFormData) bool { return blank(f.BusinessType) }},
	{"categories", MsgCategoryRequired, func(f *models.ProfileFormData) bool { return len(f.Categories) == 0 }},
	{"services", MsgServiceRequired, func(f *models.ProfileFormData) bool { return len(f.Services) == 0 }},
	{"targetCustomers", MsgTargetCustomersRequired, func(f *models.ProfileFormData) bool { return len(f.TargetCustomers) == 0 }},
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// CheckRequired runs the submission-time checks. These are stricter than the
// wizard's step gates: services and target customers are never gated per
// step but are required here.
func CheckRequired(form *models.ProfileFormData) error {
	for _, c := range requiredChecks {
		if c.missing(form) {
			return apperrors.NewSubmissionRejectedError(c.field, c.message)
		}
	}
	if form.ContactEmail != "" && !validation.ValidateEmail(form.ContactEmail) {
		return apperrors.NewSubmissionRejectedError("contactEmail", MsgInvalidEmail)
	}
	return nil
}

// BuildPayload normalizes the form into the PATCH body.
func BuildPayload(form *models.ProfileFormData) models.ProfileUpdateData {
	return models.ProfileUpdateData{
		BusinessName: form.BusinessName,
		Category:     form.Category,
		Categories:   nonNil(form.Categories),
		Description:  form.Description,
		BusinessType: strings.ToLower(form.BusinessType),

		ContactEmail:     form.ContactEmail,
		ContactPhone:     form.ContactPhone,
		MainPhone:        form.MainPhone,
		Website:          form.Website,
		Address:          form.Address,
		AdditionalPhones: phonesOrEmpty(form.AdditionalPhones),

		WhoDoYouServe:   strings.Join(form.TargetCustomers, ", "),
		ServiceDistance: string(form.ServiceDistance),
		Services:        nonNil(form.Services),
		ProductKeywords: nonNil(form.ProductKeywords),

		WorkingHours: FillWorkingHours(form.WorkingHours),
		Location:     form.Location,

		HasBranches: form.HasBranches,
		Branches:    branchesOrEmpty(form.Branches),
	}
}

// FillWorkingHours returns an entry for every weekday with empty open or
// close times replaced by 09:00 and 17:00. The closed flag does not matter.
func FillWorkingHours(wh models.WorkingHours) models.WorkingHours {
	out := make(models.WorkingHours, len(models.Weekdays))
	for _, day := range models.Weekdays {
		h := wh[day]
		if h.Open == "" {
			h.Open = models.DefaultOpenTime
		}
		if h.Close == "" {
			h.Close = models.DefaultCloseTime
		}
		out[day] = h
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func phonesOrEmpty(p []models.AdditionalPhone) []models.AdditionalPhone {
	if p == nil {
		return []models.AdditionalPhone{}
	}
	return p
}

func branchesOrEmpty(b []models.Branch) []models.Branch {
	if b == nil {
		return []models.Branch{}
	}
	return b
}

var fieldLabels = map[string]string{
	"businessName":     "Business name",
	"businessType":     "Business type",
	"category":         "Category",
	"categories":       "Categories",
	"description":      "Description",
	"contactEmail":     "Contact email",
	"contactPhone":     "Contact phone",
	"mainPhone":        "Main phone",
	"website":          "Website",
	"address":          "Address",
	"additionalPhones": "Additional phones",
	"whoDoYouServe":    "Target customers",
	"targetCustomers":  "Target customers",
	"serviceDistance":  "Service distance",
	"services":         "Services",
	"productKeywords":  "Product keywords",
	"workingHours":     "Working hours",
	"location":         "Location",
	"branches":         "Branches",
	"document":         "Document",
}

// FieldLabel returns the display label for a backend field key. Unknown
// keys are humanized: "contact_email" and "contactEmail" both become
// "Contact email".
func FieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return humanize(field)
}

func humanize(field string) string {
	rs := []rune(field)
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, caseWord(string(cur)))
			cur = cur[:0]
		}
	}
	for i, r := range rs {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			// An uppercase run is one word; its last letter opens the next
			// word when a lowercase letter follows ("VATNumber").
			prevUpper := i > 0 && unicode.IsUpper(rs[i-1])
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if !prevUpper || nextLower {
				flush()
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	if len(words) == 0 {
		return field
	}
	s := strings.Join(words, " ")
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// caseWord lowercases w unless it is an acronym.
func caseWord(w string) string {
	if utf8.RuneCountInString(w) > 1 && strings.ToUpper(w) == w && strings.ToLower(w) != w {
		return w
	}
	return strings.ToLower(w)
}

// FormatValidationErrors renders a 422 field map as "<Label>: <message>"
// lines sorted by field.
func FormatValidationErrors(fields models.FieldErrors) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs := fields[k]
		if len(msgs) == 0 {
			continue
		}
		lines = append(lines, FieldLabel(k)+": "+strings.Join(msgs, " "))
	}
	return strings.Join(lines, "\n")
}
