package wizard

import (
	"strings"

	"supplier-portal/internal/models"
)

const (
	StepBusinessInfo = iota + 1
	StepCategories
	StepContact
	StepHours
	StepLocation
	StepDocument

	FirstStep = StepBusinessInfo
	LastStep  = StepDocument
)

var stepTitles = map[int]string{
	StepBusinessInfo: "Business information",
	StepCategories:   "Categories and keywords",
	StepContact:      "Contact details",
	StepHours:        "Working hours and branches",
	StepLocation:     "Location",
	StepDocument:     "Verification document",
}

// StepTitle returns the heading shown for a step.
func StepTitle(step int) string {
	return stepTitles[step]
}

// StepErrors maps a field to its message. An empty map lets the step advance.
type StepErrors map[string]string

// ValidateStep applies the step gate for one step. Steps 4 to 6 have no
// required fields; submission checks more than the gates do.
func ValidateStep(form *models.ProfileFormData, step int) StepErrors {
	errs := StepErrors{}
	switch step {
	case StepBusinessInfo:
		if strings.TrimSpace(form.BusinessName) == "" {
			errs["businessName"] = "Business name is required"
		}
		if form.BusinessType == "" {
			errs["businessType"] = "Business type is required"
		}
		if form.Category == "" {
			errs["category"] = "Category is required"
		}
	case StepCategories:
		if len(form.Categories) == 0 {
			errs["categories"] = "Select at least one category"
		}
		if len(form.ProductKeywords) == 0 {
			errs["productKeywords"] = "Add at least one product keyword"
		}
	case StepContact:
		if strings.TrimSpace(form.MainPhone) == "" {
			errs["mainPhone"] = "Main phone is required"
		}
		if strings.TrimSpace(form.Address) == "" {
			errs["address"] = "Address is required"
		}
	}
	return errs
}

// CanAdvance reports whether the step gate for step passes.
func CanAdvance(form *models.ProfileFormData, step int) bool {
	return len(ValidateStep(form, step)) == 0
}
