// internal/models/payload.go
package models

// ProfileUpdateData is the normalized PATCH /api/supplier/profile body.
type ProfileUpdateData struct {
	BusinessName string   `json:"businessName"`
	Category     string   `json:"category"`
	Categories   []string `json:"categories"`
	Description  string   `json:"description"`
	BusinessType string   `json:"businessType"`

	ContactEmail     string            `json:"contactEmail"`
	ContactPhone     string            `json:"contactPhone"`
	MainPhone        string            `json:"mainPhone"`
	Website          string            `json:"website"`
	Address          string            `json:"address"`
	AdditionalPhones []AdditionalPhone `json:"additionalPhones"`

	WhoDoYouServe   string   `json:"whoDoYouServe"`
	ServiceDistance string   `json:"serviceDistance"`
	Services        []string `json:"services"`
	ProductKeywords []string `json:"productKeywords"`

	WorkingHours WorkingHours `json:"workingHours"`
	Location     Location     `json:"location"`

	HasBranches bool     `json:"hasBranches"`
	Branches    []Branch `json:"branches"`
}

// UploadedDocument is returned by POST /api/supplier/documents.
type UploadedDocument struct {
	ID       ID     `json:"id"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
	Status   string `json:"status"`
}

type ProductImage struct {
	ID  ID     `json:"id"`
	URL string `json:"url"`
}

// SupplierProfile is the GET /api/supplier/profile view of the signed-in
// supplier.
type SupplierProfile struct {
	ID                 ID             `json:"id"`
	BusinessName       string         `json:"business_name"`
	BusinessType       string         `json:"business_type"`
	Category           string         `json:"category"`
	Categories         []string       `json:"categories"`
	Description        string         `json:"description"`
	ContactEmail       string         `json:"contact_email"`
	MainPhone          string         `json:"main_phone"`
	Website            string         `json:"website"`
	Address            string         `json:"address"`
	WhoDoYouServe      string         `json:"who_do_you_serve"`
	Services           []string       `json:"services"`
	ProductKeywords    []string       `json:"product_keywords"`
	WorkingHours       WorkingHours   `json:"working_hours"`
	Location           *Location      `json:"location,omitempty"`
	Status             string         `json:"status"`
	VerificationStatus string         `json:"verification_status"`
	ProductImages      []ProductImage `json:"product_images"`
}

// MessageResponse covers endpoints that only acknowledge.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
