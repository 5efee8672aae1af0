// Package businessprofile is the public business page read path: detail and
// listing fetches merged with visibility preferences, plus view analytics.
package businessprofile

import (
	"context"

	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/models"
)

// DefaultRedirect is where limited profiles send anonymous visitors.
const DefaultRedirect = "/login"

type DirectoryAPI interface {
	GetBusiness(ctx context.Context, supplierID string) (*models.BusinessDetail, error)
	ListBusinesses(ctx context.Context, q models.BusinessListQuery) (*models.BusinessListResponse, error)
	TrackSearch(ctx context.Context, req models.TrackSearchRequest) error
}

// TokenSource reports whether the visitor is signed in.
type TokenSource interface {
	HasToken(ctx context.Context) bool
}

// Profile is the detail merged with the listing's preferences. Hidden
// contact fields are blanked.
type Profile struct {
	models.BusinessDetail
	Preferences models.Preferences
	PhoneHidden bool
	EmailHidden bool
}

// Decision is the outcome of loading a page. The redirect is a navigation
// hint only; the backend must enforce visibility itself.
type Decision struct {
	Redirect   bool
	RedirectTo string
	Profile    *Profile
}

type Loader struct {
	api         DirectoryAPI
	tokens      TokenSource
	logger      logger.Logger
	redirectTo  string
	trackSearch bool
}

type LoaderOption func(*Loader)

func WithLoaderLogger(l logger.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

func WithRedirect(path string) LoaderOption {
	return func(ld *Loader) { ld.redirectTo = path }
}

// WithSearchTracking reports listing queries to the analytics endpoint.
func WithSearchTracking(enabled bool) LoaderOption {
	return func(ld *Loader) { ld.trackSearch = enabled }
}

func NewLoader(api DirectoryAPI, tokens TokenSource, opts ...LoaderOption) *Loader {
	l := &Loader{
		api:        api,
		tokens:     tokens,
		logger:     logger.NewNoOpLogger(),
		redirectTo: DefaultRedirect,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the detail and then the listing entry for supplierID. A
// failed listing fetch falls back to default preferences.
func (l *Loader) Load(ctx context.Context, supplierID string) (*Decision, error) {
	detail, err := l.api.GetBusiness(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	prefs := l.preferences(ctx, supplierID)
	if prefs.IsLimited() && !l.signedIn(ctx) {
		l.logger.Info("Limited profile requested anonymously", map[string]interface{}{
			"supplierId": supplierID,
		})
		return &Decision{Redirect: true, RedirectTo: l.redirectTo}, nil
	}

	return &Decision{Profile: merge(*detail, prefs)}, nil
}

func (l *Loader) preferences(ctx context.Context, supplierID string) models.Preferences {
	list, err := l.api.ListBusinesses(ctx, models.BusinessListQuery{SupplierID: supplierID})
	if err != nil {
		l.logger.WithError(err).Warn("Listing fetch failed, using default preferences", map[string]interface{}{
			"supplierId": supplierID,
		})
		return models.Preferences{}
	}
	summary, ok := list.Find(supplierID)
	if !ok || summary.Preferences == nil {
		return models.Preferences{}
	}
	return *summary.Preferences
}

func (l *Loader) signedIn(ctx context.Context) bool {
	return l.tokens != nil && l.tokens.HasToken(ctx)
}

func merge(detail models.BusinessDetail, prefs models.Preferences) *Profile {
	p := &Profile{BusinessDetail: detail, Preferences: prefs}
	if !prefs.ShowPhone() {
		p.MainPhone = ""
		p.PhoneHidden = true
	}
	if !prefs.ShowEmail() {
		p.ContactEmail = ""
		p.EmailHidden = true
	}
	return p
}

// Search queries the public directory. With tracking enabled and a signed-in
// visitor the query is reported; tracking failures are only logged.
func (l *Loader) Search(ctx context.Context, q models.BusinessListQuery) (*models.BusinessListResponse, error) {
	list, err := l.api.ListBusinesses(ctx, q)
	if err != nil {
		return nil, err
	}
	if l.trackSearch && l.signedIn(ctx) {
		req := models.TrackSearchRequest{
			Keyword:      q.Keyword,
			Category:     q.Category,
			Location:     q.Location,
			ResultsCount: list.Meta.Total,
		}
		if req.ResultsCount == 0 {
			req.ResultsCount = len(list.Data)
		}
		if err := l.api.TrackSearch(ctx, req); err != nil {
			l.logger.WithError(err).Warn("Search tracking failed", map[string]interface{}{
				"keyword": q.Keyword,
			})
		}
	}
	return list, nil
}
