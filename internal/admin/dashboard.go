// Package admin serves the aggregate statistics dashboard.
package admin

import (
	"context"
	"errors"

	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/models"
)

const DefaultRangeDays = 30

// Ranges are the day windows the dashboard offers.
var Ranges = []int{7, 30, 90, 365}

var ErrNotAdmin = errors.New("dashboard requires an admin session")

type API interface {
	AdminDashboard(ctx context.Context, rangeDays int) (*models.DashboardStats, error)
}

// UserSource reports the signed-in account type.
type UserSource interface {
	UserType(ctx context.Context) (models.UserType, error)
}

// NormalizeRange maps a requested window onto Ranges: zero or less is the
// default, anything else rounds up to the next offered window and is capped
// at a year.
func NormalizeRange(days int) int {
	if days <= 0 {
		return DefaultRangeDays
	}
	for _, r := range Ranges {
		if days <= r {
			return r
		}
	}
	return Ranges[len(Ranges)-1]
}

type Dashboard struct {
	api    API
	users  UserSource
	logger logger.Logger
}

func NewDashboard(api API, users UserSource, log logger.Logger) *Dashboard {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Dashboard{api: api, users: users, logger: log}
}

// Stats fetches the dashboard for the normalized range. When a user source
// is configured a non-admin session is refused before the request.
func (d *Dashboard) Stats(ctx context.Context, days int) (*models.DashboardStats, error) {
	if d.users != nil {
		userType, err := d.users.UserType(ctx)
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
		if userType != models.UserTypeAdmin {
			return nil, ErrNotAdmin
		}
	}

	rangeDays := NormalizeRange(days)
	stats, err := d.api.AdminDashboard(ctx, rangeDays)
	if err != nil {
		d.logger.WithError(err).Error("Dashboard fetch failed", map[string]interface{}{
			"range": rangeDays,
		})
		return nil, err
	}
	d.logger.Debug("Dashboard loaded", map[string]interface{}{
		"range":          rangeDays,
		"totalSuppliers": stats.TotalSuppliers,
	})
	return stats, nil
}
