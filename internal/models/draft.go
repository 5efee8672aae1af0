// internal/models/draft.go
package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/validation"
)

const dayHoursSchema = `{
  "type": "object",
  "properties": {
    "open":   {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$|^$"},
    "close":  {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$|^$"},
    "closed": {"type": "boolean"}
  }
}`

var draftSchema = validation.MustCompile(`{
  "type": "object",
  "properties": {
    "businessName":    {"type": "string"},
    "category":        {"type": "string"},
    "categories":      {"type": ["array", "null"], "items": {"type": "string"}},
    "description":     {"type": "string"},
    "businessType":    {"type": "string"},
    "contactEmail":    {"type": "string"},
    "contactPhone":    {"type": "string"},
    "mainPhone":       {"type": "string"},
    "website":         {"type": "string"},
    "address":         {"type": "string"},
    "additionalPhones": {
      "type": ["array", "null"],
      "maxItems": 4,
      "items": {
        "type": "object",
        "properties": {
          "id":     {"type": "string"},
          "type":   {"type": "string"},
          "number": {"type": "string"},
          "name":   {"type": "string"}
        }
      }
    },
    "targetCustomers": {"type": ["array", "null"], "items": {"type": "string"}},
    "serviceDistance": {"type": ["string", "number", "null"]},
    "services":        {"type": ["array", "null"], "items": {"type": "string"}},
    "productKeywords": {"type": ["array", "null"], "items": {"type": "string"}},
    "workingHours": {
      "type": ["object", "null"],
      "additionalProperties": false,
      "properties": {
        "monday": ` + dayHoursSchema + `,
        "tuesday": ` + dayHoursSchema + `,
        "wednesday": ` + dayHoursSchema + `,
        "thursday": ` + dayHoursSchema + `,
        "friday": ` + dayHoursSchema + `,
        "saturday": ` + dayHoursSchema + `,
        "sunday": ` + dayHoursSchema + `
      }
    },
    "location": {
      "type": "object",
      "properties": {
        "lat": {"type": "number", "minimum": -90, "maximum": 90},
        "lng": {"type": "number", "minimum": -180, "maximum": 180}
      }
    },
    "hasBranches": {"type": "boolean"},
    "branches": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "id":   {"type": ["string", "number"]},
          "name": {"type": "string"}
        }
      }
    },
    "document": {
      "type": ["object", "null"],
      "properties": {
        "fileName": {"type": "string"},
        "path":     {"type": "string"}
      }
    }
  }
}`)

// LoadDraft validates and decodes a saved wizard draft. The result keeps the
// aggregate invariants: all seven weekdays present, unique branch ids,
// deduplicated keywords and non-nil slices.
func LoadDraft(data []byte) (*ProfileFormData, error) {
	res, err := draftSchema.ValidateDocument(data)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		fields := make(map[string][]string, len(res.Errors))
		for _, e := range res.Errors {
			fields[e.Field] = append(fields[e.Field], e.Message)
		}
		return nil, apperrors.NewValidationFailedError("Draft is invalid", fields)
	}

	form := NewProfileFormData()
	if err := json.Unmarshal(data, form); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("decode draft: %v", err))
	}
	form.normalizeDraft()
	return form, nil
}

// MarshalDraft encodes the form for the session store.
func MarshalDraft(form *ProfileFormData) ([]byte, error) {
	return json.Marshal(form)
}

func (f *ProfileFormData) normalizeDraft() {
	if f.Categories == nil {
		f.Categories = []string{}
	}
	if f.TargetCustomers == nil {
		f.TargetCustomers = []string{}
	}
	if f.Services == nil {
		f.Services = []string{}
	}
	if f.AdditionalPhones == nil {
		f.AdditionalPhones = []AdditionalPhone{}
	}

	keywords := []string{}
	seen := make(map[string]struct{}, len(f.ProductKeywords))
	for _, kw := range f.ProductKeywords {
		if _, dup := seen[kw]; dup || kw == "" {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}
	f.ProductKeywords = keywords

	defaults := DefaultWorkingHours()
	if f.WorkingHours == nil {
		f.WorkingHours = defaults
	} else {
		for _, day := range Weekdays {
			if _, ok := f.WorkingHours[day]; !ok {
				f.WorkingHours[day] = defaults[day]
			}
		}
	}

	for i := range f.AdditionalPhones {
		if f.AdditionalPhones[i].ID == "" {
			f.AdditionalPhones[i].ID = uuid.NewString()
		}
	}

	if f.Branches == nil {
		f.Branches = []Branch{}
	}
	ids := make(map[ID]struct{}, len(f.Branches))
	for i := range f.Branches {
		b := &f.Branches[i]
		if _, dup := ids[b.ID]; b.ID == "" || dup {
			b.ID = ID(uuid.NewString())
		}
		ids[b.ID] = struct{}{}
		if b.WorkingHours == nil {
			b.WorkingHours = DefaultWorkingHours()
		}
		if b.SpecialServices == nil {
			b.SpecialServices = []string{}
		}
	}
}
