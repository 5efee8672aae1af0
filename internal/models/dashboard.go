// internal/models/dashboard.go
package models

// DashboardStats is GET /api/admin/dashboard.
type DashboardStats struct {
	RangeDays            int             `json:"range"`
	TotalSuppliers       int             `json:"total_suppliers"`
	ActiveSuppliers      int             `json:"active_suppliers"`
	PendingVerifications int             `json:"pending_verifications"`
	NewRegistrations     int             `json:"new_registrations"`
	TotalInquiries       int             `json:"total_inquiries"`
	TotalReviews         int             `json:"total_reviews"`
	AverageRating        float64         `json:"average_rating"`
	ProfileViews         int             `json:"profile_views"`
	TopCategories        []CategoryCount `json:"top_categories"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type Partnership struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	LogoURL     string `json:"logo_url"`
	Website     string `json:"website"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

type PartnerStatistics struct {
	TotalPartners      int `json:"total_partners"`
	ActivePartnerships int `json:"active_partnerships"`
	CountriesCovered   int `json:"countries_covered"`
	SuppliersConnected int `json:"suppliers_connected"`
}
