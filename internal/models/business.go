// internal/models/business.go
package models

import (
	"net/url"
	"strconv"
)

const (
	VisibilityPublic  = "public"
	VisibilityLimited = "limited"
)

// Preferences are the per-supplier visibility flags. They only come with
// the public listing, not the detail endpoint.
type Preferences struct {
	ProfileVisibility string `json:"profile_visibility"`
	ShowPhonePublicly *bool  `json:"show_phone_publicly,omitempty"`
	ShowEmailPublicly *bool  `json:"show_email_publicly,omitempty"`
}

// ShowPhone defaults to true when the flag is absent.
func (p Preferences) ShowPhone() bool {
	return p.ShowPhonePublicly == nil || *p.ShowPhonePublicly
}

// ShowEmail defaults to true when the flag is absent.
func (p Preferences) ShowEmail() bool {
	return p.ShowEmailPublicly == nil || *p.ShowEmailPublicly
}

func (p Preferences) IsLimited() bool {
	return p.ProfileVisibility == VisibilityLimited
}

type BusinessSummary struct {
	ID           ID           `json:"id"`
	BusinessName string       `json:"business_name"`
	Category     string       `json:"category"`
	Address      string       `json:"address"`
	Rating       float64      `json:"rating"`
	ReviewsCount int          `json:"reviews_count"`
	Distance     *float64     `json:"distance,omitempty"`
	Location     *Location    `json:"location,omitempty"`
	Preferences  *Preferences `json:"preferences,omitempty"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

type BusinessListResponse struct {
	Data []BusinessSummary `json:"data"`
	Meta Pagination        `json:"meta"`
}

// Find returns the summary with the given id.
func (r *BusinessListResponse) Find(id string) (*BusinessSummary, bool) {
	for i := range r.Data {
		if string(r.Data[i].ID) == id {
			return &r.Data[i], true
		}
	}
	return nil, false
}

// BusinessListQuery filters GET /api/public/businesses.
type BusinessListQuery struct {
	Keyword    string
	Category   string
	Location   string
	Lat        *float64
	Lng        *float64
	RadiusKm   float64
	SupplierID string
	Page       int
	PerPage    int
}

// Values encodes the non-zero filters.
func (q BusinessListQuery) Values() url.Values {
	v := url.Values{}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.Lat != nil && q.Lng != nil {
		v.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		v.Set("lng", strconv.FormatFloat(*q.Lng, 'f', -1, 64))
	}
	if q.RadiusKm > 0 {
		v.Set("radius", strconv.FormatFloat(q.RadiusKm, 'f', -1, 64))
	}
	if q.SupplierID != "" {
		v.Set("supplier_id", q.SupplierID)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

type Review struct {
	ID        ID     `json:"id"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// BusinessDetail is GET /api/suppliers/:id/business.
type BusinessDetail struct {
	ID              ID             `json:"id"`
	BusinessName    string         `json:"business_name"`
	BusinessType    string         `json:"business_type"`
	Category        string         `json:"category"`
	Description     string         `json:"description"`
	ContactEmail    string         `json:"contact_email"`
	MainPhone       string         `json:"main_phone"`
	Website         string         `json:"website"`
	Address         string         `json:"address"`
	Services        []string       `json:"services"`
	ProductKeywords []string       `json:"product_keywords"`
	WorkingHours    WorkingHours   `json:"working_hours"`
	Location        *Location      `json:"location,omitempty"`
	Branches        []Branch       `json:"branches"`
	ProductImages   []ProductImage `json:"product_images"`
	Rating          float64        `json:"rating"`
	Reviews         []Review       `json:"reviews"`
}
